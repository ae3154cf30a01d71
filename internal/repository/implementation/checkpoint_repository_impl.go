package implementation

import (
	"context"

	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/mapper"
	"ai-notetaking-session/internal/model"
	"ai-notetaking-session/internal/repository/contract"
	"ai-notetaking-session/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CheckpointRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CheckpointMapper
}

func NewCheckpointRepository(db *gorm.DB) contract.CheckpointRepository {
	return &CheckpointRepositoryImpl{
		db:     db,
		mapper: mapper.NewCheckpointMapper(),
	}
}

func (r *CheckpointRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CheckpointRepositoryImpl) Create(ctx context.Context, checkpoint *entity.Checkpoint) error {
	m := r.mapper.ToModel(checkpoint)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*checkpoint = *r.mapper.ToEntity(m)
	return nil
}

func (r *CheckpointRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Checkpoint, error) {
	var models []*model.Checkpoint
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CheckpointRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Checkpoint{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CheckpointRepositoryImpl) PruneOldest(ctx context.Context, documentId uuid.UUID, keep int) error {
	if keep < 0 {
		keep = 0
	}
	// Delete everything older than the newest `keep` snapshots.
	subquery := r.db.Model(&model.Checkpoint{}).
		Select("id").
		Where("document_id = ?", documentId).
		Order("created_at DESC").
		Limit(keep)

	return r.db.WithContext(ctx).
		Where("document_id = ? AND id NOT IN (?)", documentId, subquery).
		Delete(&model.Checkpoint{}).Error
}

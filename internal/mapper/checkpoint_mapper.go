package mapper

import (
	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/model"
)

type CheckpointMapper struct{}

func NewCheckpointMapper() *CheckpointMapper {
	return &CheckpointMapper{}
}

func (m *CheckpointMapper) ToEntity(c *model.Checkpoint) *entity.Checkpoint {
	if c == nil {
		return nil
	}
	return &entity.Checkpoint{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		Content:    c.Content,
		Trigger:    entity.CheckpointTrigger(c.Trigger),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *CheckpointMapper) ToModel(c *entity.Checkpoint) *model.Checkpoint {
	if c == nil {
		return nil
	}
	return &model.Checkpoint{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		Content:    c.Content,
		Trigger:    string(c.Trigger),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *CheckpointMapper) ToEntities(checkpoints []*model.Checkpoint) []*entity.Checkpoint {
	entities := make([]*entity.Checkpoint, len(checkpoints))
	for i, c := range checkpoints {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

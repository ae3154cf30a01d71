package mapper

import (
	"encoding/json"
	"time"

	"ai-notetaking-session/internal/entity"
	"ai-notetaking-session/internal/model"

	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var tags []string
	if len(d.Tags) > 0 {
		// A row written before tags existed may hold SQL NULL; treat any
		// unreadable value as no tags.
		_ = json.Unmarshal(d.Tags, &tags)
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:          d.Id,
		Title:       d.Title,
		Content:     d.Content,
		DerivedText: d.DerivedText,
		Tags:        tags,
		NotebookId:  d.NotebookId,
		FolderId:    d.FolderId,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJson, _ := json.Marshal(tags)

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:          d.Id,
		Title:       d.Title,
		Content:     d.Content,
		DerivedText: d.DerivedText,
		Tags:        datatypes.JSON(tagsJson),
		NotebookId:  d.NotebookId,
		FolderId:    d.FolderId,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

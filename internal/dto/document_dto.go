package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title      string     `json:"title" validate:"required"`
	Content    string     `json:"content"`
	Tags       []string   `json:"tags"`
	NotebookId *uuid.UUID `json:"notebook_id,omitempty"`
	FolderId   *uuid.UUID `json:"folder_id,omitempty"`
}

type SaveDocumentRequest struct {
	Title       string     `json:"title" validate:"required"`
	Content     string     `json:"content"`
	DerivedText string     `json:"derived_text"`
	Tags        []string   `json:"tags"`
	NotebookId  *uuid.UUID `json:"notebook_id,omitempty"`
	FolderId    *uuid.UUID `json:"folder_id,omitempty"`
}

type DocumentResponse struct {
	Id          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	DerivedText string     `json:"derived_text"`
	Tags        []string   `json:"tags"`
	NotebookId  *uuid.UUID `json:"notebook_id,omitempty"`
	FolderId    *uuid.UUID `json:"folder_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type DocumentSummary struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	UpdatedAt *time.Time `json:"updated_at"`
}

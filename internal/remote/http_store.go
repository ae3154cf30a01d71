package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-notetaking-session/internal/dto"
	"ai-notetaking-session/internal/entity"

	"github.com/google/uuid"
)

// HTTPStore talks to the note store's REST API (the production backend or the
// bundled devstore; both expose the same document/v1 surface).
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

func NewHTTPStore(baseURL string, timeout time.Duration) *HTTPStore {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// envelope mirrors the serverutils response wrapper.
type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func (s *HTTPStore) GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	var out envelope[dto.DocumentResponse]
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/api/document/v1/%s", id), nil, &out); err != nil {
		return nil, err
	}
	return documentFromResponse(&out.Data), nil
}

func (s *HTTPStore) SaveDocument(ctx context.Context, id uuid.UUID, req *dto.SaveDocumentRequest) (*entity.Document, error) {
	var out envelope[dto.DocumentResponse]
	if err := s.do(ctx, http.MethodPut, fmt.Sprintf("/api/document/v1/%s", id), req, &out); err != nil {
		return nil, err
	}
	return documentFromResponse(&out.Data), nil
}

func (s *HTTPStore) CreateDocument(ctx context.Context, req *dto.CreateDocumentRequest) (*entity.Document, error) {
	var out envelope[dto.DocumentResponse]
	if err := s.do(ctx, http.MethodPost, "/api/document/v1", req, &out); err != nil {
		return nil, err
	}
	return documentFromResponse(&out.Data), nil
}

func (s *HTTPStore) ListDocuments(ctx context.Context) ([]*dto.DocumentSummary, error) {
	var out envelope[[]*dto.DocumentSummary]
	if err := s.do(ctx, http.MethodGet, "/api/document/v1", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (s *HTTPStore) CreateCheckpoint(ctx context.Context, documentId uuid.UUID, req *dto.CreateCheckpointRequest) (uuid.UUID, error) {
	var out envelope[dto.CreateCheckpointResponse]
	if err := s.do(ctx, http.MethodPost, fmt.Sprintf("/api/document/v1/%s/checkpoint", documentId), req, &out); err != nil {
		return uuid.Nil, err
	}
	return out.Data.Id, nil
}

func (s *HTTPStore) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure envelope[any]
		message := string(raw)
		if jsonErr := json.Unmarshal(raw, &failure); jsonErr == nil && failure.Message != "" {
			message = failure.Message
		}
		return &StatusError{Status: resp.StatusCode, Message: message}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &ProtocolError{Reason: "malformed store reply: " + err.Error()}
		}
	}
	return nil
}

func documentFromResponse(res *dto.DocumentResponse) *entity.Document {
	return &entity.Document{
		Id:          res.Id,
		Title:       res.Title,
		Content:     res.Content,
		DerivedText: res.DerivedText,
		Tags:        res.Tags,
		NotebookId:  res.NotebookId,
		FolderId:    res.FolderId,
		CreatedAt:   res.CreatedAt,
		UpdatedAt:   res.UpdatedAt,
	}
}

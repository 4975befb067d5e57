package queries

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/utils"
)

// PartView is a part together with short-lived download URLs for its blobs.
type PartView struct {
	Part           *entities.Part `json:"part"`
	ModelFileURL   string         `json:"model_file_url,omitempty"`
	RenderFileURL  string         `json:"render_file_url,omitempty"`
	DrawingFileURL string         `json:"drawing_file_url,omitempty"`
}

// ListPartsQuery pages a quotation's parts in insertion order, or a client's
// parts across the project hierarchy.
type ListPartsQuery struct {
	ClientID    string `json:"client_id,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	QuotationID string `json:"quotation_id,omitempty"`
	Cursor      string `json:"cursor,omitempty"`
	Limit       int32  `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`

	// IncludeFileURLs attaches presigned download URLs to each part.
	IncludeFileURLs bool `json:"include_file_urls,omitempty"`
}

// Validate checks the query's fields
func (q ListPartsQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return err
	}
	if q.QuotationID == "" && q.ClientID == "" {
		return apperrors.NewMissingParameter("quotation_id or client_id")
	}
	return nil
}

// ListPartsHandler handles the ListPartsQuery
type ListPartsHandler struct {
	parts       ports.PartRepository
	storage     ports.ObjectStorage
	downloadTTL time.Duration
	logger      *zap.Logger
}

// NewListPartsHandler creates a new handler instance
func NewListPartsHandler(parts ports.PartRepository, storage ports.ObjectStorage, downloadTTL time.Duration, logger *zap.Logger) *ListPartsHandler {
	return &ListPartsHandler{
		parts:       parts,
		storage:     storage,
		downloadTTL: downloadTTL,
		logger:      logger,
	}
}

// Handle executes the list parts query. A presign failure skips that URL
// rather than failing the page.
func (h *ListPartsHandler) Handle(ctx context.Context, query ListPartsQuery) (*ports.Page[PartView], error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	page, err := h.parts.Query(ctx, ports.PartQuery{
		ClientID:    query.ClientID,
		ProjectID:   query.ProjectID,
		QuotationID: query.QuotationID,
		Cursor:      query.Cursor,
		Limit:       query.Limit,
	})
	if err != nil {
		return nil, err
	}

	views := make([]PartView, 0, len(page.Items))
	for _, part := range page.Items {
		view := PartView{Part: part}
		if query.IncludeFileURLs {
			view.ModelFileURL = h.presign(ctx, part.ModelFile.Path)
			view.RenderFileURL = h.presign(ctx, part.RenderFile.Path)
			if part.DrawingFile != nil {
				view.DrawingFileURL = h.presign(ctx, part.DrawingFile.Path)
			}
		}
		views = append(views, view)
	}

	return &ports.Page[PartView]{Items: views, NextCursor: page.NextCursor}, nil
}

func (h *ListPartsHandler) presign(ctx context.Context, path string) string {
	url, err := h.storage.GetPresignedURL(ctx, path, h.downloadTTL)
	if err != nil {
		h.logger.Warn("presign failed", zap.String("path", path), zap.Error(err))
		return ""
	}
	return url
}

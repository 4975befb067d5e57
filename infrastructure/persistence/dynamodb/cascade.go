package dynamodb

import (
	"context"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/entities"
)

// cascadePageSize keeps each deletion batch within one store batch write.
const cascadePageSize = 25

// ProjectCascader deletes a project or quotation together with everything
// underneath it: quotations, parts, and the part blobs in object storage.
//
// Deletion is not atomic across pages. Pages already deleted stay deleted; a
// failed page stops the cascade and surfaces the error so the caller can
// retry, which re-walks whatever remains.
type ProjectCascader struct {
	projects   ports.ProjectRepository
	quotations ports.QuotationRepository
	parts      ports.PartRepository
	storage    ports.ObjectStorage
	logger     *zap.Logger
}

var _ ports.ProjectCascader = (*ProjectCascader)(nil)

func NewProjectCascader(
	projects ports.ProjectRepository,
	quotations ports.QuotationRepository,
	parts ports.PartRepository,
	storage ports.ObjectStorage,
	logger *zap.Logger,
) *ProjectCascader {
	return &ProjectCascader{
		projects:   projects,
		quotations: quotations,
		parts:      parts,
		storage:    storage,
		logger:     logger,
	}
}

// DeleteProject removes the project item first, so its Locked gate can veto
// the whole cascade before any child is touched, then deletes descendants.
func (c *ProjectCascader) DeleteProject(ctx context.Context, key ports.ProjectKey) error {
	if err := c.projects.Delete(ctx, key); err != nil {
		return err
	}

	cursor := ""
	for {
		page, err := c.quotations.Query(ctx, ports.QuotationQuery{
			ProjectID: key.ID,
			Cursor:    cursor,
			Limit:     cascadePageSize,
		})
		if err != nil {
			return err
		}

		keys := make([]ports.QuotationKey, 0, len(page.Items))
		for _, quotation := range page.Items {
			if err := c.deleteQuotationChildren(ctx, quotation.ID); err != nil {
				return err
			}
			keys = append(keys, ports.QuotationKey{ProjectID: quotation.ProjectID, ID: quotation.ID})
		}
		if err := c.quotations.BatchDelete(ctx, keys); err != nil {
			return err
		}

		if page.NextCursor == "" {
			return nil
		}
		cursor = page.NextCursor
	}
}

// DeleteQuotation removes one quotation and its parts. The quotation's own
// paid gate applies before any part is touched.
func (c *ProjectCascader) DeleteQuotation(ctx context.Context, key ports.QuotationKey) error {
	if err := c.quotations.Delete(ctx, key); err != nil {
		return err
	}
	return c.deleteQuotationChildren(ctx, key.ID)
}

func (c *ProjectCascader) deleteQuotationChildren(ctx context.Context, quotationID string) error {
	cursor := ""
	for {
		page, err := c.parts.Query(ctx, ports.PartQuery{
			QuotationID: quotationID,
			Cursor:      cursor,
			Limit:       cascadePageSize,
		})
		if err != nil {
			return err
		}

		keys := make([]ports.PartKey, 0, len(page.Items))
		var blobs []string
		for _, part := range page.Items {
			keys = append(keys, ports.PartKey{QuotationID: part.QuotationID, ID: part.ID})
			blobs = append(blobs, partBlobPaths(part)...)
		}

		if err := c.parts.BatchDelete(ctx, keys); err != nil {
			return err
		}
		// Blob cleanup failures are logged, not fatal: the items are gone
		// and orphaned blobs age out via a storage lifecycle rule.
		if len(blobs) > 0 {
			if err := c.storage.BulkDelete(ctx, blobs); err != nil {
				c.logger.Warn("part blob cleanup failed",
					zap.String("quotation_id", quotationID),
					zap.Int("blobs", len(blobs)),
					zap.Error(err),
				)
			}
		}

		if page.NextCursor == "" {
			return nil
		}
		cursor = page.NextCursor
	}
}

func partBlobPaths(part *entities.Part) []string {
	paths := make([]string, 0, 3)
	if part.ModelFile.Path != "" {
		paths = append(paths, part.ModelFile.Path)
	}
	if part.RenderFile.Path != "" {
		paths = append(paths, part.RenderFile.Path)
	}
	if part.DrawingFile != nil && part.DrawingFile.Path != "" {
		paths = append(paths, part.DrawingFile.Path)
	}
	return paths
}

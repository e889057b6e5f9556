package files

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/warit/linedrive/internal/classify"
	"github.com/warit/linedrive/internal/record"
)

type recordStore interface {
	ListAll(ctx context.Context) ([]record.Record, error)
	ListByType(ctx context.Context, fileType classify.FileType) ([]record.Record, error)
	Search(ctx context.Context, term string) ([]record.Record, error)
	Stats(ctx context.Context) (record.Stats, error)
}

// RegisterRoutes mounts the read-only file listing under the group.
func RegisterRoutes(group *gin.RouterGroup, handler *Handler) {
	group.GET("/files", handler.listFiles)
}

// Handler serves the dashboard's read-only view over stored records.
type Handler struct {
	store  recordStore
	logger *zap.Logger
}

// NewHandler builds the query API handler.
func NewHandler(store recordStore, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// listFiles selects its behavior from mutually exclusive query parameters:
// stats, then search, then type, then everything. Whichever comes first in
// that order wins; the rest are ignored.
func (h *Handler) listFiles(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("stats") == "true" {
		stats, err := h.store.Stats(ctx)
		if err != nil {
			h.logger.Error("fetch file stats", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch file stats"})
			return
		}
		c.JSON(http.StatusOK, stats)
		return
	}

	if term := c.Query("search"); term != "" {
		records, err := h.store.Search(ctx, term)
		if err != nil {
			h.logger.Error("search files", zap.String("term", term), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search files"})
			return
		}
		respondRecords(c, records)
		return
	}

	if fileType := c.Query("type"); fileType != "" {
		records, err := h.store.ListByType(ctx, classify.FileType(fileType))
		if err != nil {
			h.logger.Error("list files by type", zap.String("type", fileType), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch files by type"})
			return
		}
		respondRecords(c, records)
		return
	}

	records, err := h.store.ListAll(ctx)
	if err != nil {
		h.logger.Error("list files", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch files"})
		return
	}
	respondRecords(c, records)
}

func respondRecords(c *gin.Context, records []record.Record) {
	if records == nil {
		records = []record.Record{}
	}
	c.JSON(http.StatusOK, records)
}

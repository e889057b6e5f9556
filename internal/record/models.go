package record

import (
	"time"

	"github.com/google/uuid"
	"github.com/warit/linedrive/internal/classify"
)

// Record describes one successfully relayed file. Rows are written exactly
// once after a completed upload and never updated afterwards.
type Record struct {
	ID          uuid.UUID         `json:"id"`
	FileName    string            `json:"fileName"`
	FileType    classify.FileType `json:"fileType"`
	MimeType    string            `json:"mimeType"`
	SizeBytes   int64             `json:"sizeBytes"`
	StorageID   string            `json:"-"`
	StorageLink string            `json:"storageLink"`
	UploadedBy  string            `json:"uploadedBy"`
	UploadedAt  time.Time         `json:"uploadedAt"`
}

// Stats aggregates the stored records. Computed on demand, never cached.
type Stats struct {
	TotalFiles     int64            `json:"totalFiles"`
	FileTypeCounts map[string]int64 `json:"fileTypeCounts"`
}

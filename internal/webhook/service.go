package webhook

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warit/linedrive/internal/classify"
	"github.com/warit/linedrive/internal/drive"
	"github.com/warit/linedrive/internal/line"
	"github.com/warit/linedrive/internal/metrics"
	"github.com/warit/linedrive/internal/policy"
	"github.com/warit/linedrive/internal/record"
)

const unknownSender = "unknown"

const usageHint = "Send me a file and I will upload it to the drive.\n" +
	"Supported: images, videos, PDF, Word, Excel and more."

type messagingGateway interface {
	DownloadContent(ctx context.Context, messageID string) ([]byte, string, error)
	PushText(ctx context.Context, userID string, texts ...string) error
	ReplyText(ctx context.Context, replyToken, text string) error
}

type recordStore interface {
	Create(ctx context.Context, rec record.Record) (record.Record, error)
}

type uploader interface {
	Upload(ctx context.Context, fileName, contentType string, fileType classify.FileType, data []byte) (drive.UploadResult, error)
}

type sizePolicy func(kind string, sizeBytes int64) policy.Result

// Pipeline relays attachment messages: download, classify, upload, persist,
// notify. Every external failure is absorbed at the event it belongs to.
type Pipeline struct {
	gateway   messagingGateway
	records   recordStore
	uploader  uploader
	checkSize sizePolicy
	logger    *zap.Logger
	now       func() time.Time
}

// NewPipeline constructs the webhook pipeline with the default size policy.
func NewPipeline(gateway messagingGateway, records recordStore, up uploader, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		gateway:   gateway,
		records:   records,
		uploader:  up,
		checkSize: policy.CheckSize,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Process handles every event of an envelope concurrently and returns once
// all of them settled. A failing event never affects its siblings; outcomes
// are logged and counted, not propagated.
func (p *Pipeline) Process(ctx context.Context, hook line.Webhook) {
	var wg sync.WaitGroup
	for _, event := range hook.Events {
		wg.Add(1)
		go func(ev line.Event) {
			defer wg.Done()
			p.handleEvent(ctx, ev)
		}(event)
	}
	wg.Wait()
}

func (p *Pipeline) handleEvent(ctx context.Context, event line.Event) {
	if event.Type != line.EventTypeMessage {
		metrics.CountEvent("ignored")
		return
	}

	userID := event.Source.UserID
	if userID == "" {
		userID = unknownSender
	}

	switch {
	case event.Message.HasContent():
		p.handleAttachment(ctx, userID, event.Message)
	case event.Message.Type == line.MessageTypeText:
		if err := p.gateway.ReplyText(ctx, event.ReplyToken, usageHint); err != nil {
			p.logger.Error("reply usage hint", zap.String("user", userID), zap.Error(err))
		}
		metrics.CountEvent("completed")
	default:
		// stickers, locations and the like are a defined no-op
		metrics.CountEvent("ignored")
	}
}

func (p *Pipeline) handleAttachment(ctx context.Context, userID string, msg line.Message) {
	data, contentType, err := p.gateway.DownloadContent(ctx, msg.ID)
	if err != nil {
		p.logger.Error("download content",
			zap.String("message_id", msg.ID), zap.String("user", userID), zap.Error(err))
		p.notifyError(ctx, userID, "could not process the file")
		metrics.CountEvent("download_error")
		return
	}

	fileName := msg.FileName
	if fileName == "" {
		fileName = p.synthesizeName(msg.Type, contentType)
	}

	fileType := classify.Detect(fileName, contentType)
	sizeBytes := int64(len(data))

	if res := p.checkSize(msg.Type, sizeBytes); !res.Valid {
		reason := res.Reason
		if reason == "" {
			reason = "the file is too large"
		}
		p.notifyError(ctx, userID, reason)
		metrics.CountEvent("policy_rejected")
		return
	}

	uploaded, err := p.uploader.Upload(ctx, fileName, contentType, fileType, data)
	if err != nil {
		p.logger.Error("upload file",
			zap.String("file", fileName), zap.String("user", userID), zap.Error(err))
		p.notifyError(ctx, userID, "could not upload the file to the drive")
		metrics.CountEvent("upload_error")
		return
	}

	stored, err := p.records.Create(ctx, record.Record{
		FileName:    fileName,
		FileType:    fileType,
		MimeType:    contentType,
		SizeBytes:   sizeBytes,
		StorageID:   uploaded.ID,
		StorageLink: uploaded.Link,
		UploadedBy:  userID,
	})
	if err != nil {
		// the object is already stored; there is no rollback here
		p.logger.Error("persist file record",
			zap.String("file", fileName), zap.String("storage_id", uploaded.ID), zap.Error(err))
		p.notifyError(ctx, userID, "the file was uploaded but could not be recorded")
		metrics.CountEvent("persist_error")
		return
	}

	summary := fmt.Sprintf("✅ File uploaded!\nName: %s\nType: %s\nSize: %s",
		stored.FileName, stored.FileType, formatSize(stored.SizeBytes))
	link := fmt.Sprintf("View the file at: %s", stored.StorageLink)
	if err := p.gateway.PushText(ctx, userID, summary, link); err != nil {
		p.logger.Error("send success notification", zap.String("user", userID), zap.Error(err))
	}

	metrics.CountEvent("completed")
	metrics.CountUpload(string(fileType))
}

func (p *Pipeline) notifyError(ctx context.Context, userID, reason string) {
	text := fmt.Sprintf("❌ Upload failed: %s\n\nPlease try again or contact the administrator.", reason)
	if err := p.gateway.PushText(ctx, userID, text); err != nil {
		p.logger.Error("send error notification", zap.String("user", userID), zap.Error(err))
	}
}

var timestampReplacer = strings.NewReplacer(":", "-", ".", "-")

// synthesizeName builds a display name for attachments that carry none,
// e.g. image_2024-01-01T00-00-00-000Z.png.
func (p *Pipeline) synthesizeName(messageKind, contentType string) string {
	timestamp := timestampReplacer.Replace(p.now().UTC().Format("2006-01-02T15:04:05.000Z"))
	return fmt.Sprintf("%s_%s.%s", messageKind, timestamp, subtype(contentType))
}

func subtype(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	if idx := strings.Index(contentType, "/"); idx >= 0 && idx < len(contentType)-1 {
		return contentType[idx+1:]
	}
	return "bin"
}

func formatSize(bytes int64) string {
	switch {
	case bytes < 1<<10:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1<<20:
		return fmt.Sprintf("%.2f KB", float64(bytes)/(1<<10))
	case bytes < 1<<30:
		return fmt.Sprintf("%.2f MB", float64(bytes)/(1<<20))
	default:
		return fmt.Sprintf("%.2f GB", float64(bytes)/(1<<30))
	}
}

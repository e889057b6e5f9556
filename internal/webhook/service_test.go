package webhook

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/warit/linedrive/internal/classify"
	"github.com/warit/linedrive/internal/drive"
	"github.com/warit/linedrive/internal/line"
	"github.com/warit/linedrive/internal/policy"
	"github.com/warit/linedrive/internal/record"
)

// --- fakes ---

type fakeGateway struct {
	mu sync.Mutex

	content     map[string][]byte
	contentType string
	downloadErr error

	pushed  map[string][]string
	pushErr error
	replies map[string][]string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		content:     map[string][]byte{},
		contentType: "application/octet-stream",
		pushed:      map[string][]string{},
		replies:     map[string][]string{},
	}
}

func (f *fakeGateway) DownloadContent(ctx context.Context, messageID string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downloadErr != nil {
		return nil, "", f.downloadErr
	}
	data, ok := f.content[messageID]
	if !ok {
		return nil, "", errors.New("no such content")
	}
	return data, f.contentType, nil
}

func (f *fakeGateway) PushText(ctx context.Context, userID string, texts ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushed[userID] = append(f.pushed[userID], texts...)
	return nil
}

func (f *fakeGateway) ReplyText(ctx context.Context, replyToken, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[replyToken] = append(f.replies[replyToken], text)
	return nil
}

func (f *fakeGateway) pushedTo(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.pushed[userID]...)
}

type fakeRecordStore struct {
	mu      sync.Mutex
	records []record.Record
	err     error
}

func (f *fakeRecordStore) Create(ctx context.Context, rec record.Record) (record.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return record.Record{}, f.err
	}
	rec.UploadedAt = time.Now()
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeRecordStore) stored() []record.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]record.Record(nil), f.records...)
}

type fakeUploader struct {
	mu      sync.Mutex
	uploads []string
	failFor string
	err     error
}

func (f *fakeUploader) Upload(ctx context.Context, fileName, contentType string, fileType classify.FileType, data []byte) (drive.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return drive.UploadResult{}, f.err
	}
	if f.failFor != "" && strings.Contains(fileName, f.failFor) {
		return drive.UploadResult{}, errors.New("upload refused")
	}
	f.uploads = append(f.uploads, fileName)
	return drive.UploadResult{
		ID:   "others/" + fileName,
		Link: "http://localhost:9000/linedrive/others/" + fileName,
	}, nil
}

func newTestPipeline(gw *fakeGateway, store *fakeRecordStore, up *fakeUploader) *Pipeline {
	return NewPipeline(gw, store, up, zap.NewNop())
}

func messageEvent(userID string, msg line.Message) line.Event {
	return line.Event{
		Type:       line.EventTypeMessage,
		ReplyToken: "rt-" + userID,
		Source:     line.Source{UserID: userID},
		Message:    msg,
	}
}

// --- tests ---

func TestProcessRelaysFileMessage(t *testing.T) {
	gw := newFakeGateway()
	gw.content["m1"] = []byte("pdf-bytes")
	gw.contentType = "application/pdf"
	store := &fakeRecordStore{}
	up := &fakeUploader{}
	p := newTestPipeline(gw, store, up)

	p.Process(context.Background(), line.Webhook{Events: []line.Event{
		messageEvent("u1", line.Message{Type: line.MessageTypeFile, ID: "m1", FileName: "Invoice_2024.pdf"}),
	}})

	recs := store.stored()
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.FileName != "Invoice_2024.pdf" || rec.FileType != classify.TypePDF {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.SizeBytes != int64(len("pdf-bytes")) {
		t.Fatalf("unexpected size %d", rec.SizeBytes)
	}
	if rec.UploadedBy != "u1" {
		t.Fatalf("unexpected uploader %q", rec.UploadedBy)
	}

	msgs := gw.pushedTo("u1")
	if len(msgs) != 2 {
		t.Fatalf("expected a two-part success notification, got %d messages", len(msgs))
	}
	if !strings.Contains(msgs[0], "Invoice_2024.pdf") || !strings.Contains(msgs[0], "pdf") {
		t.Fatalf("summary message missing file details: %q", msgs[0])
	}
	if !strings.Contains(msgs[1], rec.StorageLink) {
		t.Fatalf("link message missing storage link: %q", msgs[1])
	}
}

func TestProcessSynthesizesFilename(t *testing.T) {
	gw := newFakeGateway()
	gw.content["m1"] = []byte("png")
	gw.contentType = "image/png"
	store := &fakeRecordStore{}
	p := newTestPipeline(gw, store, &fakeUploader{})
	p.now = func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	p.Process(context.Background(), line.Webhook{Events: []line.Event{
		messageEvent("u1", line.Message{Type: line.MessageTypeImage, ID: "m1"}),
	}})

	recs := store.stored()
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].FileName != "image_2024-01-01T00-00-00-000Z.png" {
		t.Fatalf("unexpected synthesized name %q", recs[0].FileName)
	}
	if recs[0].FileType != classify.TypeImage {
		t.Fatalf("unexpected file type %q", recs[0].FileType)
	}
}

func TestProcessIsolatesFailingEvent(t *testing.T) {
	gw := newFakeGateway()
	gw.content["m1"] = []byte("a")
	gw.content["m2"] = []byte("b")
	gw.content["m3"] = []byte("c")
	gw.contentType = "image/png"
	store := &fakeRecordStore{}
	up := &fakeUploader{failFor: "broken"}
	p := newTestPipeline(gw, store, up)

	p.Process(context.Background(), line.Webhook{Events: []line.Event{
		messageEvent("u1", line.Message{Type: line.MessageTypeFile, ID: "m1", FileName: "ok-one.png"}),
		messageEvent("u2", line.Message{Type: line.MessageTypeFile, ID: "m2", FileName: "broken.png"}),
		messageEvent("u3", line.Message{Type: line.MessageTypeFile, ID: "m3", FileName: "ok-two.png"}),
	}})

	if got := len(store.stored()); got != 2 {
		t.Fatalf("expected 2 records despite one failure, got %d", got)
	}

	msgs := gw.pushedTo("u2")
	if len(msgs) != 1 || !strings.Contains(msgs[0], "could not upload") {
		t.Fatalf("expected upload failure notification for u2, got %v", msgs)
	}
}

func TestProcessPersistFailureKeepsNoRecord(t *testing.T) {
	gw := newFakeGateway()
	gw.content["m1"] = []byte("data")
	gw.contentType = "application/pdf"
	store := &fakeRecordStore{err: errors.New("insert failed")}
	up := &fakeUploader{}
	p := newTestPipeline(gw, store, up)

	p.Process(context.Background(), line.Webhook{Events: []line.Event{
		messageEvent("u1", line.Message{Type: line.MessageTypeFile, ID: "m1", FileName: "report.pdf"}),
	}})

	if len(up.uploads) != 1 {
		t.Fatalf("expected the upload to have happened, got %d", len(up.uploads))
	}
	if len(store.stored()) != 0 {
		t.Fatalf("expected no queryable record after insert failure")
	}

	msgs := gw.pushedTo("u1")
	if len(msgs) != 1 || !strings.Contains(msgs[0], "could not be recorded") {
		t.Fatalf("expected uploaded-but-not-recorded notification, got %v", msgs)
	}
}

func TestProcessDownloadFailureNotifiesUser(t *testing.T) {
	gw := newFakeGateway()
	gw.downloadErr = errors.New("gateway unavailable")
	store := &fakeRecordStore{}
	up := &fakeUploader{}
	p := newTestPipeline(gw, store, up)

	p.Process(context.Background(), line.Webhook{Events: []line.Event{
		messageEvent("u1", line.Message{Type: line.MessageTypeVideo, ID: "m1"}),
	}})

	if len(up.uploads) != 0 {
		t.Fatalf("no upload should be attempted when download fails")
	}
	msgs := gw.pushedTo("u1")
	if len(msgs) != 1 || !strings.Contains(msgs[0], "could not process") {
		t.Fatalf("expected processing failure notification, got %v", msgs)
	}
}

func TestProcessPolicyRejectionSkipsUpload(t *testing.T) {
	gw := newFakeGateway()
	gw.content["m1"] = []byte("big")
	store := &fakeRecordStore{}
	up := &fakeUploader{}
	p := newTestPipeline(gw, store, up)
	p.checkSize = func(kind string, sizeBytes int64) policy.Result {
		return policy.Result{Valid: false, Reason: "files over 1 GB are not allowed"}
	}

	p.Process(context.Background(), line.Webhook{Events: []line.Event{
		messageEvent("u1", line.Message{Type: line.MessageTypeFile, ID: "m1", FileName: "huge.bin"}),
	}})

	if len(up.uploads) != 0 {
		t.Fatalf("policy rejection must not reach the uploader")
	}
	msgs := gw.pushedTo("u1")
	if len(msgs) != 1 || !strings.Contains(msgs[0], "files over 1 GB are not allowed") {
		t.Fatalf("expected the policy reason in the notification, got %v", msgs)
	}
}

func TestProcessTextMessageRepliesUsageHint(t *testing.T) {
	gw := newFakeGateway()
	store := &fakeRecordStore{}
	p := newTestPipeline(gw, store, &fakeUploader{})

	p.Process(context.Background(), line.Webhook{Events: []line.Event{
		messageEvent("u1", line.Message{Type: line.MessageTypeText, Text: "hello"}),
	}})

	replies := gw.replies["rt-u1"]
	if len(replies) != 1 || !strings.Contains(replies[0], "Send me a file") {
		t.Fatalf("expected usage hint reply, got %v", replies)
	}
	if len(store.stored()) != 0 {
		t.Fatalf("text messages must not create records")
	}
}

func TestProcessIgnoresNonMessageEvents(t *testing.T) {
	gw := newFakeGateway()
	store := &fakeRecordStore{}
	p := newTestPipeline(gw, store, &fakeUploader{})

	p.Process(context.Background(), line.Webhook{Events: []line.Event{
		{Type: "follow", Source: line.Source{UserID: "u1"}},
		{Type: "unfollow", Source: line.Source{UserID: "u1"}},
		messageEvent("u1", line.Message{Type: "sticker", ID: "s1"}),
	}})

	if len(store.stored()) != 0 || len(gw.pushedTo("u1")) != 0 {
		t.Fatalf("non-attachment events must be silent no-ops")
	}
}

func TestProcessMissingUserIDFallsBackToUnknown(t *testing.T) {
	gw := newFakeGateway()
	gw.content["m1"] = []byte("x")
	gw.contentType = "image/jpeg"
	store := &fakeRecordStore{}
	p := newTestPipeline(gw, store, &fakeUploader{})

	p.Process(context.Background(), line.Webhook{Events: []line.Event{
		{
			Type:    line.EventTypeMessage,
			Message: line.Message{Type: line.MessageTypeImage, ID: "m1"},
		},
	}})

	recs := store.stored()
	if len(recs) != 1 || recs[0].UploadedBy != "unknown" {
		t.Fatalf("expected sentinel uploader, got %+v", recs)
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 << 20, "5.00 MB"},
		{3 << 30, "3.00 GB"},
	}
	for _, tc := range cases {
		if got := formatSize(tc.bytes); got != tc.want {
			t.Fatalf("formatSize(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}

func TestSubtype(t *testing.T) {
	cases := []struct {
		contentType string
		want        string
	}{
		{"image/png", "png"},
		{"video/mp4; codecs=avc1", "mp4"},
		{"weird", "bin"},
		{"", "bin"},
	}
	for _, tc := range cases {
		if got := subtype(tc.contentType); got != tc.want {
			t.Fatalf("subtype(%q) = %q, want %q", tc.contentType, got, tc.want)
		}
	}
}

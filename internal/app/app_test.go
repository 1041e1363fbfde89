package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/horacebramwell/voe-go/internal/config"
	"github.com/horacebramwell/voe-go/internal/domain"
	"github.com/horacebramwell/voe-go/pkg/publishers"
	"github.com/horacebramwell/voe-go/pkg/voe"
)

type fakeClient struct {
	server    string
	remoteURL string
	resp      *voe.Response

	uploadedServer string
	uploadedName   string
	uploadedSize   int
}

func (f *fakeClient) GetAccountInfo(context.Context) (*voe.Response, error)  { return f.resp, nil }
func (f *fakeClient) GetAccountStats(context.Context) (*voe.Response, error) { return f.resp, nil }
func (f *fakeClient) GetUploadServer(context.Context) (string, error)        { return f.server, nil }

func (f *fakeClient) UploadFile(_ context.Context, serverURL, fileName string, data []byte) (*voe.Response, error) {
	f.uploadedServer = serverURL
	f.uploadedName = fileName
	f.uploadedSize = len(data)
	return f.resp, nil
}

func (f *fakeClient) RemoteUpload(_ context.Context, sourceURL string) (*voe.Response, error) {
	f.remoteURL = sourceURL
	return f.resp, nil
}

func (f *fakeClient) ListRemoteUploads(context.Context, *int64) (*voe.Response, error) {
	return f.resp, nil
}

func (f *fakeClient) CloneFile(context.Context, string, int64) (*voe.Response, error) {
	return f.resp, nil
}

func (f *fakeClient) GetFileInfo(context.Context, string) (*voe.Response, error) {
	return f.resp, nil
}

func (f *fakeClient) ListFiles(context.Context, voe.ListFilesOptions) (*voe.Response, error) {
	return f.resp, nil
}

func (f *fakeClient) RenameFile(context.Context, string, string) (*voe.Response, error) {
	return f.resp, nil
}

func (f *fakeClient) MoveFile(context.Context, string, int64) (*voe.Response, error) {
	return f.resp, nil
}

func (f *fakeClient) DeleteFile(context.Context, string) (*voe.Response, error) {
	return f.resp, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []publishers.Event
}

func (c *capturePublisher) ID() string   { return "capture" }
func (c *capturePublisher) Type() string { return "http" }
func (c *capturePublisher) Publish(_ context.Context, evt publishers.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppName:                "voe-go-test",
		APIKey:                 "test-key",
		BaseURL:                "https://voe.example/api",
		RequestTimeout:         5 * time.Second,
		HistoryType:            "bbolt",
		HistoryPath:            filepath.Join(t.TempDir(), "history.db"),
		HistoryTTL:             time.Hour,
		HistoryCleanupInterval: time.Hour,
	}
}

func TestUploadFileJournalsAndPublishes(t *testing.T) {
	resp := &voe.Response{Success: true, Result: json.RawMessage(`{"file_code":"abc123"}`)}
	client := &fakeClient{server: "https://up.example/upload", resp: resp}
	sink := &capturePublisher{}

	a, err := New(context.Background(), testConfig(t), nil,
		WithClient(client),
		WithFanout(publishers.NewFanout([]publishers.Publisher{sink})),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("movie-bytes"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := a.UploadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if got != resp {
		t.Fatalf("expected API response to pass through, got %#v", got)
	}
	if client.uploadedServer != "https://up.example/upload" || client.uploadedName != "clip.mp4" {
		t.Fatalf("upload used wrong target: server=%q name=%q", client.uploadedServer, client.uploadedName)
	}

	uploads, err := a.RecentUploads(5)
	if err != nil {
		t.Fatalf("RecentUploads: %v", err)
	}
	if len(uploads) != 1 {
		t.Fatalf("expected 1 journal entry, got %d", len(uploads))
	}
	up := uploads[0]
	if up.Kind != domain.KindFile || up.FileName != "clip.mp4" || up.SizeBytes != int64(len("movie-bytes")) {
		t.Fatalf("journal entry mismatch: %+v", up)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(sink.events))
	}
	evt := sink.events[0]
	if evt.Source != "voe-go-test" || evt.Upload.FileName != "clip.mp4" {
		t.Fatalf("event mismatch: %+v", evt)
	}
}

func TestRemoteUploadJournals(t *testing.T) {
	client := &fakeClient{resp: &voe.Response{Success: true}}

	a, err := New(context.Background(), testConfig(t), nil, WithClient(client))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if _, err := a.RemoteUpload(context.Background(), "https://example.com/a.mp4"); err != nil {
		t.Fatalf("RemoteUpload: %v", err)
	}
	if client.remoteURL != "https://example.com/a.mp4" {
		t.Fatalf("remote upload url = %q", client.remoteURL)
	}

	uploads, err := a.RecentUploads(5)
	if err != nil {
		t.Fatalf("RecentUploads: %v", err)
	}
	if len(uploads) != 1 || uploads[0].Kind != domain.KindRemote || uploads[0].SourceURL != "https://example.com/a.mp4" {
		t.Fatalf("journal entry mismatch: %#v", uploads)
	}
}

func TestUploadFileFailsOnMissingFile(t *testing.T) {
	client := &fakeClient{server: "https://up.example/upload", resp: &voe.Response{Success: true}}

	a, err := New(context.Background(), testConfig(t), nil, WithClient(client))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if _, err := a.UploadFile(context.Background(), filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if client.uploadedName != "" {
		t.Fatalf("client should not be called when the file cannot be read")
	}
}

func TestNewRejectsMissingAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.APIKey = ""

	_, err := New(context.Background(), cfg, nil)
	if err == nil {
		t.Fatalf("expected error for missing api key")
	}
	if !voe.IsCode(err, voe.ErrCodeMissingAPIKey) {
		t.Fatalf("expected MISSING_API_KEY classification, got %v", err)
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

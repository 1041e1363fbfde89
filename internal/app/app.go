package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/horacebramwell/voe-go/internal/config"
	"github.com/horacebramwell/voe-go/internal/domain"
	"github.com/horacebramwell/voe-go/internal/history"
	"github.com/horacebramwell/voe-go/internal/logger"
	"github.com/horacebramwell/voe-go/pkg/publishers"
	"github.com/horacebramwell/voe-go/pkg/voe"
)

// App wires together the hosting API client, the local upload journal, and the
// publisher fanout, and exposes the orchestrated operations the CLI runs.
type App struct {
	cfg     *config.Config
	client  voe.ClientAPI
	history history.Store
	fanout  *publishers.Fanout
	log     logger.Logger
}

// Option overrides a dependency before New wires the defaults.
type Option func(*App) error

// WithClient injects a pre-built API client.
func WithClient(client voe.ClientAPI) Option {
	return func(a *App) error {
		if client == nil {
			return fmt.Errorf("client must not be nil")
		}
		a.client = client
		return nil
	}
}

// WithStore injects a pre-built history store.
func WithStore(store history.Store) Option {
	return func(a *App) error {
		if store == nil {
			return fmt.Errorf("store must not be nil")
		}
		a.history = store
		return nil
	}
}

// WithFanout injects a pre-built publisher fanout.
func WithFanout(fanout *publishers.Fanout) Option {
	return func(a *App) error {
		if fanout == nil {
			return fmt.Errorf("fanout must not be nil")
		}
		a.fanout = fanout
		return nil
	}
}

// New builds the application runtime from config.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	a := &App{cfg: cfg, log: log}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.client == nil {
		client, err := voe.NewClient(cfg.APIKey,
			voe.WithBaseURL(cfg.BaseURL),
			voe.WithTimeout(cfg.RequestTimeout),
			voe.WithLogger(log),
		)
		if err != nil {
			return nil, fmt.Errorf("init api client: %w", err)
		}
		a.client = client
	}

	if a.history == nil {
		store, err := history.NewStore(cfg.HistoryType, cfg.HistoryPath, history.Options{
			EntryTTL:        cfg.HistoryTTL,
			CleanupInterval: cfg.HistoryCleanupInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("init history store: %w", err)
		}
		a.history = store
		log.InfoObj("history store initialized", "history_config", map[string]any{
			"type":                     cfg.HistoryType,
			"path":                     cfg.HistoryPath,
			"entry_ttl_seconds":        int(cfg.HistoryTTL.Seconds()),
			"cleanup_interval_seconds": int(cfg.HistoryCleanupInterval.Seconds()),
		})
	}

	if a.fanout == nil {
		fanout, err := buildFanout(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		a.fanout = fanout
	}

	return a, nil
}

// buildFanout loads the publishers file and instantiates every enabled sink.
// No publishers file means no downstream notifications, which is valid.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		log.WarnObj("publishers file has no enabled entries", "publishers_file", cfg.PublishersFile)
		return publishers.NewFanout(nil), nil
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	return publishers.NewFanout(pubClients), nil
}

// UploadFile reads a local file, asks the API for a fresh upload server, and
// pushes the file to it.
func (a *App) UploadFile(ctx context.Context, path string) (*voe.Response, error) {
	if a == nil || a.client == nil {
		return nil, fmt.Errorf("app is not initialized")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read upload file: %w", err)
	}

	server, err := a.client.GetUploadServer(ctx)
	if err != nil {
		return nil, err
	}

	fileName := filepath.Base(path)
	resp, err := a.client.UploadFile(ctx, server, fileName, data)
	if err != nil {
		return nil, err
	}

	a.record(ctx, domain.Upload{
		Kind:        domain.KindFile,
		FileName:    fileName,
		SizeBytes:   int64(len(data)),
		Server:      server,
		Result:      resp.Result,
		CompletedAt: time.Now().UTC(),
	})
	return resp, nil
}

// RemoteUpload asks the API to fetch sourceURL into the account.
func (a *App) RemoteUpload(ctx context.Context, sourceURL string) (*voe.Response, error) {
	if a == nil || a.client == nil {
		return nil, fmt.Errorf("app is not initialized")
	}

	resp, err := a.client.RemoteUpload(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	a.record(ctx, domain.Upload{
		Kind:        domain.KindRemote,
		SourceURL:   sourceURL,
		Result:      resp.Result,
		CompletedAt: time.Now().UTC(),
	})
	return resp, nil
}

// record journals the upload and notifies publishers. Neither failure aborts
// the operation, the upload itself already succeeded.
func (a *App) record(ctx context.Context, up domain.Upload) {
	if err := a.history.RecordUpload(up); err != nil {
		a.log.WarnObj("history record failed", "error", err)
	}

	if a.fanout.Size() == 0 {
		return
	}
	evt := publishers.NewEvent(a.cfg.AppName, up)
	if _, err := a.fanout.Publish(ctx, evt); err != nil {
		a.log.WarnObj("publisher fanout reported errors", "error", err)
	}
}

// RecentUploads lists journal entries, newest first.
func (a *App) RecentUploads(limit int) ([]domain.Upload, error) {
	if a == nil || a.history == nil {
		return nil, nil
	}
	return a.history.RecentUploads(limit)
}

// Client exposes the underlying API client for the pass-through commands.
func (a *App) Client() voe.ClientAPI {
	if a == nil {
		return nil
	}
	return a.client
}

// Close releases the journal, logging any errors encountered.
func (a *App) Close() {
	if a == nil || a.history == nil {
		return
	}
	if err := a.history.Close(); err != nil {
		a.log.ErrorObj("history close failed", "error", err)
	}
}

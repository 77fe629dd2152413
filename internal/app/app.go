// Package app wires configuration, logging and the catalog backends shared
// by the command line tools.
package app

import (
	"context"
	"fmt"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/catalog"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/config"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/connectors"
	gmailconnector "github.com/smartquote-rcs/smartquote-backend-sub003/internal/connectors/gmail"
	imapconnector "github.com/smartquote-rcs/smartquote-backend-sub003/internal/connectors/imap"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/ingest"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/listener"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/logger"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/storage"
)

type App struct {
	Cfg   config.Config
	Log   logger.Logger
	DB    *storage.DB
	Store ingest.CatalogStore
}

func New(cfg config.Config) (*App, error) {
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDevelopment})
	if err != nil {
		return nil, err
	}

	if cfg.DBDriver == storage.DriverPostgres {
		if err := cfg.Require("DATABASE_URL", cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}
	db, err := storage.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}

	a := &App{Cfg: cfg, Log: log, DB: db}
	switch cfg.CatalogBackend {
	case config.BackendSQL:
		a.Store = db
	case config.BackendREST:
		for name, value := range map[string]string{
			"CATALOG_API_BASE_URL": cfg.CatalogAPIBaseURL,
			"CATALOG_API_KEY":      cfg.CatalogAPIKey,
		} {
			if err := cfg.Require(name, value); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		a.Store = catalog.NewClient(cfg)
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unsupported catalog backend: %s", cfg.CatalogBackend)
	}

	log.Debug("app ready",
		logger.String("db_driver", cfg.DBDriver),
		logger.String("catalog_backend", cfg.CatalogBackend),
	)
	return a, nil
}

func (a *App) Close() error {
	_ = a.Log.Sync()
	return a.DB.Close()
}

func (a *App) Ingestor(store ingest.CatalogStore) *ingest.BatchIngestor {
	return ingest.NewBatchIngestor(store, a.Cfg.CatalogTable, a.Log)
}

// DryRunStore copies the supplier's current catalog into memory so a dry run
// sees real duplicates without writing anything.
func (a *App) DryRunStore(ctx context.Context, supplierID int64) (*catalog.MemoryStore, error) {
	existing, err := a.Store.Query(ctx, a.Cfg.CatalogTable, internal.Query{Filters: supplierFilter(supplierID)})
	if err != nil {
		return nil, fmt.Errorf("load supplier catalog: %w", err)
	}

	mem := catalog.NewMemoryStore()
	mem.Seed(a.Cfg.CatalogTable, existing)
	return mem, nil
}

// SupplierProducts lists a supplier's catalog, newest first. limit <= 0
// returns every record.
func (a *App) SupplierProducts(ctx context.Context, supplierID int64, limit int) ([]internal.CatalogRecord, error) {
	if supplierID <= 0 {
		return nil, ingest.ErrInvalidSupplier
	}
	return a.Store.Query(ctx, a.Cfg.CatalogTable, internal.Query{
		Filters:     supplierFilter(supplierID),
		Limit:       limit,
		NewestFirst: true,
	})
}

func supplierFilter(supplierID int64) []internal.Filter {
	return []internal.Filter{{Column: internal.ColSupplierID, Op: internal.FilterEq, Value: supplierID}}
}

// Listener builds the inbox listener, fed from the mailbox when MAIL_PROVIDER
// is set.
func (a *App) Listener(ctx context.Context) (*listener.Service, error) {
	svc := listener.NewService(a.Cfg, a.DB, a.Ingestor(a.Store), a.Log)
	if a.Cfg.MailProvider == "" {
		return svc, nil
	}
	fetcher, err := a.MailFetcher(ctx)
	if err != nil {
		return nil, err
	}
	return svc.WithMail(fetcher), nil
}

func (a *App) MailFetcher(ctx context.Context) (*connectors.FetchService, error) {
	var (
		conn connectors.MailConnector
		err  error
	)
	switch a.Cfg.MailProvider {
	case connectors.ProviderIMAP:
		conn, err = imapconnector.NewConnector(a.Cfg)
	case connectors.ProviderGmail:
		conn, err = gmailconnector.NewConnector(ctx, a.Cfg)
	default:
		return nil, fmt.Errorf("unsupported mail provider: %q", a.Cfg.MailProvider)
	}
	if err != nil {
		return nil, err
	}

	dropper := connectors.NewInboxDropper(a.Cfg.InboxDir, a.Cfg.MailSuppliers, a.Log)
	return connectors.NewFetchService(conn, dropper, a.Cfg.MailLabel, a.Cfg.MailFetchMax), nil
}

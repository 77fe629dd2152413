package listener

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/config"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/connectors"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/discovery"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/ingest"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/logger"
)

const (
	processedDir    = "processed"
	defaultInterval = 30 * time.Second
)

// inboxName is "<supplierId>_<anything>.<ext>".
var inboxName = regexp.MustCompile(`^(\d+)_.+\.[A-Za-z]+$`)

// BatchStore records which inbox files were ingested and how each run went.
type BatchStore interface {
	UpsertBatch(hash, fileName string, supplierID int64) (internal.BatchRow, error)
	UpdateBatchStatus(batchID int64, status string) error
	InsertRun(traceID string, batchID *int64, supplierID int64, counts map[string]int, timings map[string]float64) error
}

// MailFetcher feeds supplier e-mails into the inbox before each cycle.
type MailFetcher interface {
	FetchAndDrop(ctx context.Context) (connectors.FetchResult, error)
}

type Service struct {
	cfg      config.Config
	batches  BatchStore
	ingestor *ingest.BatchIngestor
	mail     MailFetcher
	log      logger.Logger
}

type CycleResult struct {
	Ingested int
	Skipped  int
	Failed   int
}

func NewService(cfg config.Config, batches BatchStore, ingestor *ingest.BatchIngestor, log logger.Logger) *Service {
	return &Service{cfg: cfg, batches: batches, ingestor: ingestor, log: log}
}

func (s *Service) WithMail(fetcher MailFetcher) *Service {
	s.mail = fetcher
	return s
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.ListenerIntervalSec) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}
	s.log.Info("inbox listener started",
		logger.String("inbox", s.cfg.InboxDir),
		logger.Duration("interval", interval),
	)
	for {
		res, err := s.RunCycle(ctx)
		if err != nil {
			s.log.Error("listener cycle failed", logger.Error(err))
		} else {
			s.log.Info("listener cycle done",
				logger.Int("ingested", res.Ingested),
				logger.Int("skipped", res.Skipped),
				logger.Int("failed", res.Failed),
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// RunCycle ingests every eligible file currently in the inbox. A failing file
// is counted and left in place; the rest of the cycle continues.
func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	var res CycleResult
	if s.mail != nil {
		fetched, err := s.mail.FetchAndDrop(ctx)
		if err != nil {
			s.log.Warn("mail fetch failed", logger.Error(err))
		} else {
			s.log.Info("mail fetch done",
				logger.Int("fetched", fetched.Fetched),
				logger.Int("dropped", fetched.Dropped),
				logger.Int("unmatched", fetched.Unmatched),
			)
		}
	}

	if err := os.MkdirAll(s.cfg.InboxDir, 0o755); err != nil {
		return res, err
	}

	entries, err := os.ReadDir(s.cfg.InboxDir)
	if err != nil {
		return res, err
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if entry.IsDir() || !discovery.Supported(entry.Name()) {
			continue
		}
		supplierID, ok := supplierFromName(entry.Name())
		if !ok {
			s.log.Warn("inbox file without supplier prefix", logger.String("file", entry.Name()))
			res.Skipped++
			continue
		}

		ingested, err := s.processFile(ctx, entry.Name(), supplierID)
		switch {
		case err != nil:
			s.log.Error("inbox file failed", logger.String("file", entry.Name()), logger.Error(err))
			res.Failed++
		case ingested:
			res.Ingested++
		default:
			res.Skipped++
		}
	}
	return res, nil
}

func (s *Service) processFile(ctx context.Context, name string, supplierID int64) (bool, error) {
	start := time.Now()
	path := filepath.Join(s.cfg.InboxDir, name)

	blob, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	sum := sha256.Sum256(blob)
	hash := hex.EncodeToString(sum[:])

	batch, err := s.batches.UpsertBatch(hash, name, supplierID)
	if err != nil {
		return false, err
	}
	log := s.log.With(logger.Int64("batch_id", batch.ID), logger.String("file", name))

	if batch.Status == internal.BatchDone {
		log.Info("inbox file already ingested")
		return false, moveToProcessed(s.cfg.InboxDir, name)
	}

	summary, err := s.ingestFile(ctx, name, blob, supplierID, batch.ID)
	if err != nil {
		_ = s.batches.UpdateBatchStatus(batch.ID, internal.BatchFailed)
		return false, err
	}

	counts := map[string]int{
		"items":    summary.Processed(),
		"saved":    summary.SavedCount,
		"inserted": summary.InsertedCount(),
		"errors":   summary.ErrorCount,
	}
	timings := map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}
	if err := s.batches.InsertRun(uuid.NewString(), &batch.ID, supplierID, counts, timings); err != nil {
		log.Warn("run not recorded", logger.Error(err))
	}

	if err := s.batches.UpdateBatchStatus(batch.ID, internal.BatchDone); err != nil {
		return false, err
	}
	log.Info("inbox file ingested",
		logger.Int("saved", summary.SavedCount),
		logger.Int("errors", summary.ErrorCount),
		logger.Float64("total_ms", timings["totalMs"]),
	)
	return true, moveToProcessed(s.cfg.InboxDir, name)
}

func (s *Service) ingestFile(ctx context.Context, name string, blob []byte, supplierID, batchID int64) (internal.IngestionSummary, error) {
	items, err := discovery.Load(name, blob)
	if err != nil {
		return internal.IngestionSummary{}, err
	}

	kept := ingest.FilterByPrice(items, s.cfg.PriceMin, s.cfg.PriceMax)
	if dropped := len(items) - len(kept); dropped > 0 {
		s.log.Info("items outside price range skipped", logger.String("file", name), logger.Int("dropped", dropped))
	}

	summary, err := s.ingestor.Ingest(ctx, kept, supplierID, s.cfg.DefaultOperatorID)
	if err != nil {
		return internal.IngestionSummary{}, err
	}

	if s.cfg.ListenerAutoExport {
		outputPath := filepath.Join(s.cfg.OutputDir, "listener", exportName(batchID, name))
		if err := ingest.ExportSummaryToXLSX(summary, outputPath); err != nil {
			return internal.IngestionSummary{}, fmt.Errorf("export summary: %w", err)
		}
	}
	return summary, nil
}

func supplierFromName(name string) (int64, bool) {
	m := inboxName.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func exportName(batchID int64, name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	base = repl.Replace(base)
	if len(base) > 120 {
		base = base[:120]
	}
	return fmt.Sprintf("%d_%s.xlsx", batchID, base)
}

func moveToProcessed(inbox, name string) error {
	dir := filepath.Join(inbox, processedDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.Rename(filepath.Join(inbox, name), filepath.Join(dir, name))
}

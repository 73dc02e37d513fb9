package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/interfaces"
)

// ScanStats summarises one pass over the inbox directory
type ScanStats struct {
	Scanned   int
	Ingested  int
	Unchanged int
	Skipped   int
	Errors    int
	Duration  time.Duration
}

// Service periodically ingests new or changed files from a directory.
// Files are identified by their base name, matching uploads of the same file.
type Service struct {
	documents  interfaces.DocumentService
	config     common.InboxConfig
	maxBytes   int64
	extensions map[string]bool
	cron       *cron.Cron
	mu         sync.Mutex // one scan at a time
	logger     arbor.ILogger
}

// NewService creates an inbox watcher. maxBytes bounds the size of a single file.
func NewService(documents interfaces.DocumentService, config common.InboxConfig, maxBytes int64, logger arbor.ILogger) *Service {
	extensions := make(map[string]bool, len(config.Extensions))
	for _, ext := range config.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[ext] = true
	}

	return &Service{
		documents:  documents,
		config:     config,
		maxBytes:   maxBytes,
		extensions: extensions,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger,
	}
}

// Start registers the scan on the configured schedule
func (s *Service) Start() error {
	if err := os.MkdirAll(s.config.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create inbox directory: %w", err)
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, s.runScan); err != nil {
		return fmt.Errorf("invalid inbox schedule '%s': %w", s.config.Schedule, err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("dir", s.config.Dir).
		Str("schedule", s.config.Schedule).
		Msg("Inbox scheduler started")

	return nil
}

// Stop halts the schedule and waits for a running scan to finish
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Inbox scheduler stopped")
}

func (s *Service) runScan() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	stats, err := s.Scan(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Inbox scan failed")
		return
	}

	if stats.Ingested > 0 || stats.Errors > 0 {
		s.logger.Info().
			Int("scanned", stats.Scanned).
			Int("ingested", stats.Ingested).
			Int("unchanged", stats.Unchanged).
			Int("skipped", stats.Skipped).
			Int("errors", stats.Errors).
			Dur("duration", stats.Duration).
			Msg("Inbox scan completed")
	}
}

// Scan ingests every matching file whose content differs from its registry record.
// A failing file is logged and counted; the scan continues with the next one.
func (s *Service) Scan(ctx context.Context) (*ScanStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	entries, err := os.ReadDir(s.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	stats := &ScanStats{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || !s.accepts(entry.Name()) {
			continue
		}
		stats.Scanned++
		s.scanFile(ctx, entry, stats)
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func (s *Service) scanFile(ctx context.Context, entry os.DirEntry, stats *ScanStats) {
	name := entry.Name()
	info, err := entry.Info()
	if err != nil {
		stats.Errors++
		s.logger.Warn().Err(err).Str("file", name).Msg("Failed to stat inbox file")
		return
	}
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		stats.Skipped++
		s.logger.Warn().Str("file", name).Int64("size", info.Size()).Int64("max", s.maxBytes).Msg("Inbox file too large, skipped")
		return
	}

	data, err := os.ReadFile(filepath.Join(s.config.Dir, name))
	if err != nil {
		stats.Errors++
		s.logger.Warn().Err(err).Str("file", name).Msg("Failed to read inbox file")
		return
	}

	current, err := s.documents.IsCurrent(ctx, name, data)
	if err != nil {
		stats.Errors++
		s.logger.Warn().Err(err).Str("file", name).Msg("Failed to check ingest registry")
		return
	}
	if current {
		stats.Unchanged++
		return
	}

	result, err := s.documents.IngestFile(ctx, name, data)
	if err != nil {
		stats.Errors++
		s.logger.Error().Err(err).Str("file", name).Msg("Failed to ingest inbox file")
		return
	}

	stats.Ingested++
	s.logger.Info().Str("file", name).Int("chunks", result.ChunkCount).Msg("Inbox file ingested")
}

func (s *Service) accepts(name string) bool {
	if len(s.extensions) == 0 {
		return true
	}
	return s.extensions[strings.ToLower(filepath.Ext(name))]
}

package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"github.com/yourusername/ministry-site/internal/logging"
	"github.com/yourusername/ministry-site/internal/store"
)

// Dumper writes a full copy of the site's data to w.
type Dumper interface {
	Dump(ctx context.Context, w io.Writer) error
	// Ext is the file extension of the uncompressed dump.
	Ext() string
}

// Metadata is stored next to every backup file.
type Metadata struct {
	BackupType string    `json:"backup_type"`
	Timestamp  string    `json:"timestamp"`
	CreatedAt  time.Time `json:"created_at"`
	SizeBytes  int64     `json:"size_bytes"`
	Filename   string    `json:"filename"`
}

type Manager struct {
	dumper         Dumper
	backupDir      string
	retentionDays  int
	editsThreshold int
	lastEditCount  int
	edits          int
	now            func() time.Time
	log            zerolog.Logger
	mu             sync.Mutex
}

func NewManager(dumper Dumper, backupDir string, retentionDays, editsThreshold int) *Manager {
	if retentionDays <= 0 {
		retentionDays = 7
	}
	return &Manager{
		dumper:         dumper,
		backupDir:      backupDir,
		retentionDays:  retentionDays,
		editsThreshold: editsThreshold,
		now:            time.Now,
		log:            logging.For("backup"),
	}
}

// Start runs the daily 2 AM backup until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go m.scheduleDailyBackup(ctx)
	m.log.Info().Str("dir", m.backupDir).Int("retentionDays", m.retentionDays).Msg("Backup manager started")
}

func (m *Manager) scheduleDailyBackup(ctx context.Context) {
	for {
		now := m.now()
		next := time.Date(now.Year(), now.Month(), now.Day()+1, 2, 0, 0, 0, now.Location())
		wait := next.Sub(now)
		m.log.Debug().Dur("in", wait).Msg("Next scheduled backup")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := m.CreateBackup(ctx, "daily"); err != nil {
			m.log.Error().Err(err).Msg("Error creating daily backup")
		}
	}
}

// RecordEdit counts one content mutation and takes a backup once the
// threshold is crossed. A zero threshold disables edit-triggered backups.
func (m *Manager) RecordEdit(ctx context.Context) {
	m.mu.Lock()
	m.edits++
	due := m.editsThreshold > 0 && m.edits-m.lastEditCount >= m.editsThreshold
	if due {
		m.lastEditCount = m.edits
	}
	m.mu.Unlock()

	if !due {
		return
	}
	if _, err := m.CreateBackup(context.WithoutCancel(ctx), "edit-threshold"); err != nil {
		m.log.Error().Err(err).Msg("Error creating edit-threshold backup")
	}
}

// CreateBackup writes a gzip-compressed dump plus its metadata file.
func (m *Manager) CreateBackup(ctx context.Context, backupType string) (Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.backupDir, 0o755); err != nil {
		return Metadata{}, fmt.Errorf("error creating backup directory: %w", err)
	}

	created := m.now()
	timestamp := created.Format("2006-01-02_15-04-05")
	base := fmt.Sprintf("backup_%s_%s", backupType, timestamp)
	filename := base + m.dumper.Ext() + ".gz"
	filePath := filepath.Join(m.backupDir, filename)

	size, err := m.writeCompressed(ctx, filePath)
	if err != nil {
		os.Remove(filePath)
		return Metadata{}, err
	}

	meta := Metadata{
		BackupType: backupType,
		Timestamp:  timestamp,
		CreatedAt:  created.UTC(),
		SizeBytes:  size,
		Filename:   filename,
	}
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return Metadata{}, fmt.Errorf("error creating metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.backupDir, base+".json"), metaJSON, 0o644); err != nil {
		return Metadata{}, fmt.Errorf("error writing metadata: %w", err)
	}

	m.log.Info().Str("file", filename).Float64("mb", float64(size)/(1024*1024)).Msg("Backup created")
	m.cleanOldBackups()
	return meta, nil
}

func (m *Manager) writeCompressed(ctx context.Context, path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("error creating backup file: %w", err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if err := m.dumper.Dump(ctx, zw); err != nil {
		zw.Close()
		return 0, fmt.Errorf("error dumping data: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("error compressing backup: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("error getting backup file info: %w", err)
	}
	return info.Size(), nil
}

func (m *Manager) cleanOldBackups() {
	files, err := os.ReadDir(m.backupDir)
	if err != nil {
		m.log.Error().Err(err).Msg("Error reading backup directory")
		return
	}

	cutoff := m.now().AddDate(0, 0, -m.retentionDays)
	deleted := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), "backup_") {
			continue
		}
		info, err := file.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(m.backupDir, file.Name())); err != nil {
			m.log.Warn().Err(err).Str("file", file.Name()).Msg("Error deleting old backup")
			continue
		}
		deleted++
	}

	if deleted > 0 {
		m.log.Info().Int("files", deleted).Msg("Cleaned up old backups")
	}
}

// ListBackups returns every backup's metadata, newest first. A missing
// directory yields an empty list.
func (m *Manager) ListBackups() ([]Metadata, error) {
	files, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Metadata{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading backup directory: %w", err)
	}

	backups := make([]Metadata, 0)
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(m.backupDir, file.Name()))
		if err != nil {
			continue
		}
		var meta Metadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		backups = append(backups, meta)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// PgDump shells out to pg_dump.
type PgDump struct {
	DSN string
}

func (p PgDump) Ext() string { return ".sql" }

func (p PgDump) Dump(ctx context.Context, w io.Writer) error {
	var stderr strings.Builder
	cmd := exec.CommandContext(ctx, "pg_dump", p.DSN)
	cmd.Stdout = w
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pg_dump failed: %w, output: %s", err, stderr.String())
	}
	return nil
}

// Snapshot exports every store as one JSON document. It works with any
// store backend.
type Snapshot struct {
	Stores store.Stores
}

func (s Snapshot) Ext() string { return ".json" }

func (s Snapshot) Dump(ctx context.Context, w io.Writer) error {
	singers, err := s.Stores.Singers.List(ctx)
	if err != nil {
		return err
	}
	songs, err := s.Stores.Songs.List(ctx)
	if err != nil {
		return err
	}
	prayers, err := s.Stores.PrayerRequests.List(ctx)
	if err != nil {
		return err
	}
	sections, err := s.Stores.Content.ListSections(ctx)
	if err != nil {
		return err
	}
	content := make(map[string]map[string]any, len(sections))
	for _, name := range sections {
		sec, err := s.Stores.Content.GetSection(ctx, name)
		if err != nil {
			return err
		}
		content[name] = sec.Content
	}

	return json.NewEncoder(w).Encode(map[string]any{
		"singers":        singers,
		"songs":          songs,
		"prayerRequests": prayers,
		"content":        content,
	})
}

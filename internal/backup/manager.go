// Package backup creates sibling copies of documents before processing and
// restores them when processing fails.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dochub/internal/port"
)

// Manager implements port.BackupManager with sibling-file snapshots.
type Manager struct {
	// dir overrides the snapshot directory; empty means alongside the source.
	dir string
}

// NewManager creates a Manager writing snapshots next to each source file.
func NewManager() *Manager { return &Manager{} }

// NewManagerInDir creates a Manager writing snapshots into dir.
func NewManagerInDir(dir string) *Manager { return &Manager{dir: dir} }

// Acquire copies path to a timestamped sibling and returns the snapshot
// handle. The source file is not modified.
func (m *Manager) Acquire(path string) (port.Snapshot, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s for backup: %w", path, err)
	}
	defer src.Close()

	backupPath := m.backupPath(path)
	dst, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating backup %s: %w", backupPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(backupPath)
		return nil, fmt.Errorf("writing backup %s: %w", backupPath, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(backupPath)
		return nil, fmt.Errorf("closing backup %s: %w", backupPath, err)
	}
	return &snapshot{source: path, backup: backupPath}, nil
}

func (m *Manager) backupPath(path string) string {
	dir := m.dir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamp := time.Now().Format("20060102-150405")
	return filepath.Join(dir, fmt.Sprintf("%s.backup-%s%s", stem, stamp, ext))
}

type snapshot struct {
	source string
	backup string
}

func (s *snapshot) Path() string { return s.backup }

// Restore copies the snapshot back over the source file. The snapshot file
// is kept for manual inspection.
func (s *snapshot) Restore() error {
	data, err := os.ReadFile(s.backup)
	if err != nil {
		return fmt.Errorf("reading backup %s: %w", s.backup, err)
	}
	if err := os.WriteFile(s.source, data, 0o644); err != nil {
		return fmt.Errorf("restoring %s: %w", s.source, err)
	}
	return nil
}

// Discard removes the snapshot file.
func (s *snapshot) Discard() error {
	if err := os.Remove(s.backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing backup %s: %w", s.backup, err)
	}
	return nil
}

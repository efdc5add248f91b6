// Package versions implements the disk-backed document version history:
// timestamped copies written into a per-user version directory, bounded
// by an oldest-first retention policy, plus the timer-driven auto-saver
// that feeds it.
package versions

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/leapstack-labs/leapgrid/internal/codec"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// timestampLayout is the version filename timestamp: local time,
// second resolution.
const timestampLayout = "20060102_150405"

// Store persists and retrieves document versions in a single directory.
// The directory is the only index: every query re-scans it, so there is
// no cache to invalidate when files appear or vanish externally.
type Store struct {
	dir    string
	keep   int
	logger *slog.Logger
	now    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a version store rooted at dir, creating the
// directory if needed. keep bounds the number of versions retained per
// base name; any positive value is accepted.
func NewStore(dir string, keep int, opts ...StoreOption) (*Store, error) {
	if keep < 1 {
		return nil, &core.ConfigError{Key: "keep_versions", Value: keep, Message: "must be positive"}
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create version directory: %w", err)
	}

	s := &Store{
		dir:    dir,
		keep:   keep,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the version directory path.
func (s *Store) Dir() string { return s.dir }

// SetKeep updates the retention bound. Non-positive values are ignored.
func (s *Store) SetKeep(keep int) {
	if keep >= 1 {
		s.keep = keep
	}
}

// SaveVersion serializes the document into the version directory as
// {base}_v{timestamp}{ext} and then enforces retention for that base
// name. The document must be bound to a file; the version inherits its
// extension and therefore its format.
func (s *Store) SaveVersion(doc *core.Document) (core.VersionRecord, error) {
	if doc == nil {
		return core.VersionRecord{}, core.ErrNoDocument
	}
	if doc.BoundPath == "" {
		return core.VersionRecord{}, core.ErrNoBoundPath
	}

	base := baseName(doc.BoundPath)
	ext := filepath.Ext(doc.BoundPath)
	stamp := s.now().Format(timestampLayout)

	// Second-resolution timestamps collide under rapid manual saves; a
	// numeric suffix keeps each version file distinct instead of
	// silently overwriting the previous one.
	name := fmt.Sprintf("%s_v%s%s", base, stamp, ext)
	path := filepath.Join(s.dir, name)
	for n := 1; fileExists(path); n++ {
		name = fmt.Sprintf("%s_v%s_%02d%s", base, stamp, n, ext)
		path = filepath.Join(s.dir, name)
	}

	if err := codec.WriteDocument(doc, path); err != nil {
		return core.VersionRecord{}, fmt.Errorf("failed to save version: %w", err)
	}

	s.logger.Debug("saved version", "file", name)
	s.cleanupOldVersions(base)

	info, err := os.Stat(path)
	if err != nil {
		// The file was written; a stat race (e.g. concurrent cleanup)
		// still yields a usable record.
		return core.VersionRecord{FileName: name, Path: path, ModifiedAt: s.now()}, nil
	}
	return core.VersionRecord{
		FileName:   name,
		Path:       path,
		ModifiedAt: info.ModTime(),
		SizeBytes:  info.Size(),
	}, nil
}

// cleanupOldVersions deletes the oldest versions of base until the
// retained count is within the bound. Deletion failures are logged and
// skipped: retention is best effort and a temporary overshoot is
// acceptable.
func (s *Store) cleanupOldVersions(base string) {
	records, err := s.scan(base)
	if err != nil {
		s.logger.Warn("failed to scan version directory for cleanup", "error", err)
		return
	}

	// scan returns newest first; delete from the tail (oldest) down.
	excess := len(records) - s.keep
	for i := 0; i < excess; i++ {
		victim := records[len(records)-1-i]
		if err := os.Remove(victim.Path); err != nil {
			s.logger.Warn("failed to delete old version", "file", victim.FileName, "error", err)
		} else {
			s.logger.Debug("deleted old version", "file", victim.FileName)
		}
	}
}

// GetVersions returns the stored versions for the document at path,
// newest first.
func (s *Store) GetVersions(path string) ([]core.VersionRecord, error) {
	return s.scan(baseName(path))
}

// Prune enforces the retention bound for the document at path outside
// the save cycle and reports how many files remain.
func (s *Store) Prune(path string) (int, error) {
	base := baseName(path)
	s.cleanupOldVersions(base)
	records, err := s.scan(base)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// RestoreVersion deserializes a version file into a fresh document.
// This is a destructive replacement from the caller's point of view:
// anyone who cares about recoverability pushes an undo snapshot first.
func (s *Store) RestoreVersion(rec core.VersionRecord) (*core.Document, error) {
	doc, err := codec.ReadDocument(rec.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrVersionNotFound, rec.FileName)
		}
		return nil, err
	}
	return doc, nil
}

// DeleteVersion removes a version file. Deleting a version that is
// already gone is not an error.
func (s *Store) DeleteVersion(rec core.VersionRecord) error {
	if err := os.Remove(rec.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete version %s: %w", rec.FileName, err)
	}
	return nil
}

// scan lists version files for base, newest first by mtime.
func (s *Store) scan(base string) ([]core.VersionRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read version directory: %w", err)
	}

	prefix := base + "_v"
	var records []core.VersionRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Deleted between ReadDir and Info; skip.
			continue
		}
		records = append(records, core.VersionRecord{
			FileName:   entry.Name(),
			Path:       filepath.Join(s.dir, entry.Name()),
			ModifiedAt: info.ModTime(),
			SizeBytes:  info.Size(),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].ModifiedAt.Equal(records[j].ModifiedAt) {
			// Same mtime (second-resolution filesystems, rapid saves):
			// the collision suffix makes names order-preserving.
			return records[i].FileName > records[j].FileName
		}
		return records[i].ModifiedAt.After(records[j].ModifiedAt)
	})
	return records, nil
}

// baseName strips directory and extension: /a/b/budget.csv -> budget.
func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

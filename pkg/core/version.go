package core

import "time"

// Auto-save configuration bounds.
const (
	MinIntervalMinutes = 1
	MaxIntervalMinutes = 60
	MinKeepVersions    = 1
	MaxKeepVersions    = 100
)

// VersionRecord describes one persisted historical copy of a document.
// Records are derived purely by scanning the version directory; the
// filesystem is the index, there is no separate persisted catalog.
type VersionRecord struct {
	// FileName is the version file's base name, e.g. "budget_v20260827_143005.csv".
	FileName string `json:"file_name"`
	// Path is the absolute path inside the version directory.
	Path string `json:"path"`
	// ModifiedAt is the file's modification time.
	ModifiedAt time.Time `json:"modified_at"`
	// SizeBytes is the file size.
	SizeBytes int64 `json:"size_bytes"`
}

// AutoSaveSettings holds the auto-save configuration consumed by the
// version store. Range clamping (1-60 minutes, 1-100 versions) happens
// at the configuration boundary; the store itself tolerates any
// positive values.
type AutoSaveSettings struct {
	Enabled         bool `koanf:"enabled" json:"enabled"`
	IntervalMinutes int  `koanf:"interval_minutes" json:"interval_minutes"`
	KeepVersions    int  `koanf:"keep_versions" json:"keep_versions"`
}

// DefaultAutoSaveSettings returns the stock auto-save configuration.
func DefaultAutoSaveSettings() AutoSaveSettings {
	return AutoSaveSettings{
		Enabled:         true,
		IntervalMinutes: 5,
		KeepVersions:    10,
	}
}

// Validate checks the settings against the allowed ranges.
func (s AutoSaveSettings) Validate() error {
	if s.IntervalMinutes < MinIntervalMinutes || s.IntervalMinutes > MaxIntervalMinutes {
		return &ConfigError{
			Key:     "interval_minutes",
			Value:   s.IntervalMinutes,
			Message: "must be between 1 and 60",
		}
	}
	if s.KeepVersions < MinKeepVersions || s.KeepVersions > MaxKeepVersions {
		return &ConfigError{
			Key:     "keep_versions",
			Value:   s.KeepVersions,
			Message: "must be between 1 and 100",
		}
	}
	return nil
}

// Interval returns the auto-save interval as a duration.
func (s AutoSaveSettings) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// AutoSaveEvent is one audit row recorded per auto-save attempt that
// passed the precondition check. It is the structured side channel that
// replaces the original catch-and-print error handling: failed ticks
// are visible here without ever crashing the host.
type AutoSaveEvent struct {
	ID           string    `json:"id"`
	DocumentPath string    `json:"document_path"`
	VersionFile  string    `json:"version_file"`
	Status       string    `json:"status"` // "saved" or "failed"
	Error        string    `json:"error,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Auto-save event status values.
const (
	AutoSaveStatusSaved  = "saved"
	AutoSaveStatusFailed = "failed"
)

// SettingsStore persists auto-save settings and the auto-save audit
// trail across sessions.
type SettingsStore interface {
	LoadAutoSave() (AutoSaveSettings, error)
	SaveAutoSave(AutoSaveSettings) error
	RecordAutoSave(AutoSaveEvent) error
	ListAutoSaveEvents(limit int) ([]AutoSaveEvent, error)
	Close() error
}

package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// Source kinds recorded by an export.
const (
	SourcePeople   = "people"
	SourceVariants = "variants"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// same compares fingerprints at the precision DuckDB stores timestamps.
func (fp FileFingerprint) same(other FileFingerprint) bool {
	return fp.Path == other.Path &&
		fp.Size == other.Size &&
		fp.ModTime.UTC().Truncate(time.Microsecond).Equal(other.ModTime.UTC().Truncate(time.Microsecond))
}

// RecordSource stores the fingerprint of the file an export was read from.
func (s *Store) RecordSource(kind string, fp FileFingerprint) error {
	if _, err := s.db.Exec("DELETE FROM sources WHERE kind=?", kind); err != nil {
		return fmt.Errorf("clear source %s: %w", kind, err)
	}
	_, err := s.db.Exec(`INSERT INTO sources (kind, path, size, mod_time, loaded_at)
		VALUES (?, ?, ?, ?, ?)`,
		kind, fp.Path, fp.Size, fp.ModTime.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record source %s: %w", kind, err)
	}
	return nil
}

// Source returns the recorded fingerprint for kind.
// The second result is false if nothing was recorded.
func (s *Store) Source(kind string) (FileFingerprint, bool, error) {
	var fp FileFingerprint
	err := s.db.QueryRow("SELECT path, size, mod_time FROM sources WHERE kind=?", kind).
		Scan(&fp.Path, &fp.Size, &fp.ModTime)
	if errors.Is(err, sql.ErrNoRows) {
		return FileFingerprint{}, false, nil
	}
	if err != nil {
		return FileFingerprint{}, false, fmt.Errorf("query source %s: %w", kind, err)
	}
	return fp, true, nil
}

// ClearSources forgets every recorded fingerprint.
func (s *Store) ClearSources() error {
	_, err := s.db.Exec("DELETE FROM sources")
	return err
}

// Current reports whether the stored pedigree was exported from exactly
// these source files. Kinds recorded by an earlier export but absent from
// sources make the store stale.
func (s *Store) Current(sources map[string]FileFingerprint) (bool, error) {
	var recorded int
	if err := s.db.QueryRow("SELECT count(*) FROM sources").Scan(&recorded); err != nil {
		return false, fmt.Errorf("count sources: %w", err)
	}
	if recorded != len(sources) || recorded == 0 {
		return false, nil
	}

	for kind, fp := range sources {
		stored, ok, err := s.Source(kind)
		if err != nil {
			return false, err
		}
		if !ok || !stored.same(fp) {
			return false, nil
		}
	}
	return true, nil
}

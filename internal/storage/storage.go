// Package storage is the cloud service's tenant-scoped filesystem
// storage layer: every tenant gets its own subdirectory, and every file
// within it is named by job id and role so input and output never
// collide.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Store is local-filesystem storage rooted at BaseDir, with one
// subdirectory per tenant.
type Store struct {
	BaseDir string
}

// New creates BaseDir if needed and returns a Store rooted at it.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", baseDir, err)
	}
	return &Store{BaseDir: baseDir}, nil
}

func (s *Store) tenantDir(tenantID string) (string, error) {
	dir := filepath.Join(s.BaseDir, tenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create tenant dir %s: %w", dir, err)
	}
	return dir, nil
}

func objectName(jobID uuid.UUID, role, filename string) string {
	return fmt.Sprintf("%s_%s_%s", jobID, role, filename)
}

// SaveInput writes an uploaded file's content under the tenant's
// directory, named "{job_id}_input_{filename}".
func (s *Store) SaveInput(tenantID string, jobID uuid.UUID, filename string, content io.Reader) (string, error) {
	return s.save(tenantID, jobID, "input", filename, content)
}

// SaveOutput writes a processed file's content, named
// "{job_id}_output_{filename}".
func (s *Store) SaveOutput(tenantID string, jobID uuid.UUID, filename string, content io.Reader) (string, error) {
	return s.save(tenantID, jobID, "output", filename, content)
}

func (s *Store) save(tenantID string, jobID uuid.UUID, role, filename string, content io.Reader) (string, error) {
	dir, err := s.tenantDir(tenantID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, objectName(jobID, role, filename))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// FindFile returns the path to the tenant's file of the given role for
// jobID, or "" if none exists.
func (s *Store) FindFile(tenantID string, jobID uuid.UUID, role string) (string, error) {
	dir, err := s.tenantDir(tenantID)
	if err != nil {
		return "", err
	}
	pattern := filepath.Join(dir, fmt.Sprintf("%s_%s_*", jobID, role))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	return matches[0], nil
}

// Writable verifies the storage root still accepts writes, for the
// health endpoint's storage probe.
func (s *Store) Writable() error {
	f, err := os.CreateTemp(s.BaseDir, ".healthcheck-*")
	if err != nil {
		return fmt.Errorf("storage root not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// CleanupJob deletes every file belonging to jobID in tenantID's
// directory, tolerating files that are already gone.
func (s *Store) CleanupJob(tenantID string, jobID uuid.UUID) error {
	dir, err := s.tenantDir(tenantID)
	if err != nil {
		return err
	}
	pattern := filepath.Join(dir, fmt.Sprintf("%s_*", jobID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("glob %s: %w", pattern, err)
	}

	failed := lo.Filter(matches, func(path string, _ int) bool {
		return os.Remove(path) != nil
	})
	if len(failed) > 0 {
		return fmt.Errorf("failed to remove %d of %d job files", len(failed), len(matches))
	}
	return nil
}

package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveInputAndFindFileRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	jobID := uuid.New()
	path, err := s.SaveInput("tenant-a", jobID, "notes.rm", strings.NewReader("scene bytes"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "scene bytes", string(data))

	found, err := s.FindFile("tenant-a", jobID, "input")
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestFindFileMissingReturnsEmptyNoError(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	found, err := s.FindFile("tenant-a", uuid.New(), "output")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestTenantIsolation(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	jobID := uuid.New()
	_, err = s.SaveOutput("tenant-a", jobID, "notes.rm", strings.NewReader("a"))
	require.NoError(t, err)

	found, err := s.FindFile("tenant-b", jobID, "output")
	require.NoError(t, err)
	assert.Empty(t, found, "tenant B must not see tenant A's files even with the same job id")
}

func TestCleanupJobRemovesAllRolesForJob(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	jobID := uuid.New()
	_, err = s.SaveInput("tenant-a", jobID, "notes.rm", strings.NewReader("in"))
	require.NoError(t, err)
	_, err = s.SaveOutput("tenant-a", jobID, "notes.rm", strings.NewReader("out"))
	require.NoError(t, err)

	require.NoError(t, s.CleanupJob("tenant-a", jobID))

	in, err := s.FindFile("tenant-a", jobID, "input")
	require.NoError(t, err)
	assert.Empty(t, in)
	out, err := s.FindFile("tenant-a", jobID, "output")
	require.NoError(t, err)
	assert.Empty(t, out)
}

package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveEvidenceWritesLocalFile(t *testing.T) {
	root := t.TempDir()
	svc := NewEvidenceService(root, nil)

	ev, err := svc.SaveEvidence(context.Background(), "case-1", FileLokiScan, []byte("ALERT: finding\n"))
	require.NoError(t, err)

	assert.Equal(t, FileLokiScan, ev.Name)
	assert.Equal(t, int64(15), ev.Size)
	assert.Empty(t, ev.StorageKey, "no object store configured")

	data, err := os.ReadFile(filepath.Join(root, "case-1", FileLokiScan))
	require.NoError(t, err)
	assert.Equal(t, "ALERT: finding\n", string(data))
}

func TestSaveEvidenceRejectsPathTraversal(t *testing.T) {
	svc := NewEvidenceService(t.TempDir(), nil)

	_, err := svc.SaveEvidence(context.Background(), "case-1", "../../etc/passwd", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid evidence filename")

	_, err = svc.SaveEvidence(context.Background(), "case-1", "", []byte("x"))
	require.Error(t, err)
}

func TestListEvidence(t *testing.T) {
	root := t.TempDir()
	svc := NewEvidenceService(root, nil)

	files, err := svc.ListEvidence("case-1")
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = svc.SaveEvidence(context.Background(), "case-1", FileYaraMatches, []byte("rule file\n"))
	require.NoError(t, err)

	files, err = svc.ListEvidence("case-1")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, FileYaraMatches, files[0].Name)
}

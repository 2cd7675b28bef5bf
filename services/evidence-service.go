package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jeturing/Segrd-forensics-sub000/logging"
	"github.com/jeturing/Segrd-forensics-sub000/models"
)

// EvidenceService stores uploaded evidence. Files are written to the local
// evidence directory (what the graph builder reads) and mirrored to the
// object store when one is configured.
type EvidenceService struct {
	EvidenceRoot string
	Storage      *StorageService
}

func NewEvidenceService(evidenceRoot string, storage *StorageService) *EvidenceService {
	return &EvidenceService{EvidenceRoot: evidenceRoot, Storage: storage}
}

func (s *EvidenceService) SaveEvidence(ctx context.Context, caseID, filename string, data []byte) (*models.EvidenceFile, error) {
	if filepath.Base(filename) != filename || filename == "." || filename == "" {
		return nil, fmt.Errorf("invalid evidence filename")
	}

	caseDir := filepath.Join(s.EvidenceRoot, caseID)
	if err := os.MkdirAll(caseDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create evidence directory: %v", err)
	}

	localPath := filepath.Join(caseDir, filename)
	if err := os.WriteFile(localPath, data, 0640); err != nil {
		return nil, fmt.Errorf("failed to write evidence file: %v", err)
	}

	ev := &models.EvidenceFile{
		Name:       filename,
		Size:       int64(len(data)),
		UploadedAt: time.Now().UTC(),
	}

	if s.Storage != nil {
		key := fmt.Sprintf("evidence/%s/%s", caseID, filename)
		if err := s.Storage.Upload(ctx, key, data, "application/octet-stream"); err != nil {
			// Local copy is authoritative for the graph builder; the mirror
			// failing is logged, not fatal.
			logging.Logger.Warnf("Event ID: EVIDENCE_MIRROR_FAILED, Description: Failed to mirror %s to object store: %v", key, err)
		} else {
			ev.StorageKey = key
		}
	}

	logging.Logger.Infof("Event ID: EVIDENCE_SAVED, Description: Saved evidence file %s (%d bytes) for case %s.", filename, len(data), caseID)
	return ev, nil
}

// ListEvidence lists the files currently present in the case directory.
func (s *EvidenceService) ListEvidence(caseID string) ([]models.EvidenceFile, error) {
	caseDir := filepath.Join(s.EvidenceRoot, caseID)
	entries, err := os.ReadDir(caseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.EvidenceFile{}, nil
		}
		return nil, fmt.Errorf("failed to list evidence: %v", err)
	}

	var files []models.EvidenceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, models.EvidenceFile{
			Name:       entry.Name(),
			Size:       info.Size(),
			UploadedAt: info.ModTime().UTC(),
		})
	}
	return files, nil
}

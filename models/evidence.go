package models

import "time"

// EvidenceFile describes one file inside a case evidence directory.
type EvidenceFile struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	StorageKey string    `json:"storageKey,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jeturing/Segrd-forensics-sub000/models"
	"github.com/jeturing/Segrd-forensics-sub000/services"

	"github.com/gorilla/mux"
)

// Evidence uploads are capped well above the largest tool exports we see.
const maxEvidenceSize = 50 << 20

type EvidenceHandler struct {
	CaseService     *services.CaseService
	EvidenceService *services.EvidenceService
}

// UploadEvidence accepts a multipart file upload and stores it in the case
// evidence directory.
func (h *EvidenceHandler) UploadEvidence(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	caseID := mux.Vars(r)["id"]
	if _, err := h.CaseService.GetCaseByID(r.Context(), tenantID, caseID); err != nil {
		if err.Error() == "case not found" {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching case", http.StatusInternalServerError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxEvidenceSize)
	if err := r.ParseMultipartForm(maxEvidenceSize); err != nil {
		http.Error(w, "Invalid multipart payload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Evidence file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read evidence file", http.StatusBadRequest)
		return
	}

	saved, err := h.EvidenceService.SaveEvidence(r.Context(), caseID, header.Filename, data)
	if err != nil {
		if err.Error() == "invalid evidence filename" {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to save evidence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(saved)
}

// ListEvidence returns the files currently attached to a case.
func (h *EvidenceHandler) ListEvidence(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator, models.RoleViewer}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	caseID := mux.Vars(r)["id"]
	if _, err := h.CaseService.GetCaseByID(r.Context(), tenantID, caseID); err != nil {
		if err.Error() == "case not found" {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching case", http.StatusInternalServerError)
		return
	}

	files, err := h.EvidenceService.ListEvidence(caseID)
	if err != nil {
		http.Error(w, "Failed to list evidence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

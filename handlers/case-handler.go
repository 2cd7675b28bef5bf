package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jeturing/Segrd-forensics-sub000/models"
	"github.com/jeturing/Segrd-forensics-sub000/services"

	"github.com/gorilla/mux"
)

type CaseHandler struct {
	Service *services.CaseService
}

func NewCaseHandler(service *services.CaseService) *CaseHandler {
	return &CaseHandler{Service: service}
}

func (h *CaseHandler) CreateCase(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var c models.Case
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if c.Title == "" {
		http.Error(w, "Case title is required", http.StatusBadRequest)
		return
	}

	created, err := h.Service.CreateCase(r.Context(), tenantID, c)
	if err != nil {
		http.Error(w, "Failed to create case", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *CaseHandler) ListCases(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator, models.RoleViewer}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	cases, err := h.Service.GetCases(r.Context(), tenantID)
	if err != nil {
		http.Error(w, "Error fetching cases", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cases)
}

func (h *CaseHandler) GetCaseByID(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator, models.RoleViewer}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	c, err := h.Service.GetCaseByID(r.Context(), tenantID, mux.Vars(r)["id"])
	if err != nil {
		if err.Error() == "case not found" {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching case", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

func (h *CaseHandler) UpdateCase(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var update models.Case
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updated, err := h.Service.UpdateCase(r.Context(), tenantID, mux.Vars(r)["id"], update)
	if err != nil {
		if err.Error() == "case not found" {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update case", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *CaseHandler) DeleteCase(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.Service.DeleteCase(r.Context(), tenantID, mux.Vars(r)["id"]); err != nil {
		if err.Error() == "case not found" {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete case", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Case deleted successfully"}`))
}

func (h *CaseHandler) AddIOC(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var ioc models.IOC
	if err := json.NewDecoder(r.Body).Decode(&ioc); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	created, err := h.Service.AddIOC(r.Context(), tenantID, mux.Vars(r)["id"], ioc)
	if err != nil {
		switch err.Error() {
		case "case not found":
			http.Error(w, err.Error(), http.StatusNotFound)
		case "ioc type and value are required":
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Failed to add IOC", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *CaseHandler) ListIOCs(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator, models.RoleViewer}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	iocs, err := h.Service.GetIOCs(r.Context(), tenantID, mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Error fetching IOCs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(iocs)
}

func (h *CaseHandler) DeleteIOC(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.Service.DeleteIOC(r.Context(), tenantID, mux.Vars(r)["iocId"]); err != nil {
		if err.Error() == "IOC not found" {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete IOC", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "IOC deleted successfully"}`))
}

func (h *CaseHandler) AddTimelineEntry(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var entry models.Investigation
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if entry.Author == "" {
		entry.Author = r.Header.Get("Username")
	}

	created, err := h.Service.AddTimelineEntry(r.Context(), tenantID, mux.Vars(r)["id"], entry)
	if err != nil {
		switch err.Error() {
		case "case not found":
			http.Error(w, err.Error(), http.StatusNotFound)
		case "timeline action is required":
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Failed to add timeline entry", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *CaseHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator, models.RoleViewer}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	entries, err := h.Service.GetTimeline(r.Context(), tenantID, mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Error fetching timeline", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

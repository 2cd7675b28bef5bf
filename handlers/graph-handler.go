package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jeturing/Segrd-forensics-sub000/models"
	"github.com/jeturing/Segrd-forensics-sub000/services"

	"github.com/gorilla/mux"
)

type GraphHandler struct {
	CaseService  *services.CaseService
	GraphBuilder *services.GraphBuilderService
	Exporter     *services.GraphExportService
}

// GetCaseGraph builds the attack graph for a case from its evidence files.
// The graph is assembled fresh on every request.
func (h *GraphHandler) GetCaseGraph(w http.ResponseWriter, r *http.Request) {
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

	graph, err := h.GraphBuilder.BuildCaseGraph(caseID)
	if err != nil {
		http.Error(w, "Failed to build case graph", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(graph)
}

// ExportCaseGraph mirrors the current graph into Neo4j.
func (h *GraphHandler) ExportCaseGraph(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if h.Exporter == nil {
		http.Error(w, "Graph export is not configured", http.StatusServiceUnavailable)
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

	graph, err := h.GraphBuilder.BuildCaseGraph(caseID)
	if err != nil {
		http.Error(w, "Failed to build case graph", http.StatusInternalServerError)
		return
	}

	if err := h.Exporter.ExportCaseGraph(r.Context(), graph); err != nil {
		http.Error(w, "Failed to export graph", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Graph exported successfully"}`))
}

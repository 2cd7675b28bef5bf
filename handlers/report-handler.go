package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jeturing/Segrd-forensics-sub000/models"
	"github.com/jeturing/Segrd-forensics-sub000/services"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	CaseService   *services.CaseService
	GraphBuilder  *services.GraphBuilderService
	ReportService *services.ReportService
}

// GenerateReport builds the current attack graph and renders a case report
// from it.
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
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
	c, err := h.CaseService.GetCaseByID(r.Context(), tenantID, caseID)
	if err != nil {
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

	iocs, err := h.CaseService.GetIOCs(r.Context(), tenantID, caseID)
	if err != nil {
		http.Error(w, "Error fetching IOCs", http.StatusInternalServerError)
		return
	}

	report, err := h.ReportService.GenerateReport(r.Context(), c, graph, iocs)
	if err != nil {
		http.Error(w, "Failed to generate report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(report)
}

func (h *ReportHandler) GetReportByID(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator, models.RoleViewer}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	report, err := h.ReportService.GetReportByID(r.Context(), tenantID, mux.Vars(r)["reportId"])
	if err != nil {
		if err.Error() == "report not found" {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

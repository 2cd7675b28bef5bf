package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jeturing/Segrd-forensics-sub000/models"
	"github.com/jeturing/Segrd-forensics-sub000/services"

	"github.com/gorilla/mux"
)

type ToolHandler struct {
	CaseService *services.CaseService
	Runner      *services.ToolRunnerService
}

// ListTools returns the tool names the runner knows about.
func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator, models.RoleViewer}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"tools": h.Runner.KnownTools()})
}

// RunTool launches a forensic tool against the case evidence directory. The
// request blocks until the tool finishes or times out.
func (h *ToolHandler) RunTool(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	caseID := vars["id"]
	tool := vars["tool"]

	if _, err := h.CaseService.GetCaseByID(r.Context(), tenantID, caseID); err != nil {
		if err.Error() == "case not found" {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching case", http.StatusInternalServerError)
		return
	}

	if err := h.Runner.RunTool(r.Context(), caseID, tool); err != nil {
		if err.Error() == "unknown tool: "+tool {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Tool run completed"}`))
}

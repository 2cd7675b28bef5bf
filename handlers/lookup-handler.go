package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jeturing/Segrd-forensics-sub000/models"
	"github.com/jeturing/Segrd-forensics-sub000/services"
)

type LookupHandler struct {
	Service *services.LookupService
}

// WebCheck profiles a domain or host through the web-check API.
func (h *LookupHandler) WebCheck(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	target := r.URL.Query().Get("target")
	if target == "" {
		http.Error(w, "Query parameter 'target' is required", http.StatusBadRequest)
		return
	}

	result, err := h.Service.WebCheck(target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// GetSignIns pulls recent sign-in events from Microsoft Graph. The caller
// supplies the Graph access token for their tenant.
func (h *LookupHandler) GetSignIns(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	accessToken := strings.TrimPrefix(r.Header.Get("X-Graph-Token"), "Bearer ")
	if accessToken == "" {
		http.Error(w, "X-Graph-Token header is required", http.StatusBadRequest)
		return
	}

	signIns, err := h.Service.GetSignIns(accessToken)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"value": signIns})
}

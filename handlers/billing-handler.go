package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jeturing/Segrd-forensics-sub000/logging"
	"github.com/jeturing/Segrd-forensics-sub000/models"
	"github.com/jeturing/Segrd-forensics-sub000/services"
)

type BillingHandler struct {
	BillingService *services.BillingService
	UserService    *services.UserService
}

// CreateCheckoutSession starts a Stripe checkout for a plan upgrade. Admins
// only, since the subscription belongs to the whole tenant.
func (h *BillingHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req struct {
		Plan string `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	tenant, err := h.UserService.GetTenantByID(r.Context(), tenantID)
	if err != nil {
		http.Error(w, "Tenant not found", http.StatusNotFound)
		return
	}

	url, err := h.BillingService.CreateCheckoutSession(r.Context(), tenant, req.Plan)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"checkoutUrl": url})
}

// GetSubscription returns the tenant's current plan and subscription state.
func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleInvestigator, models.RoleViewer}); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	tenantID, err := requestTenantID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	tenant, err := h.UserService.GetTenantByID(r.Context(), tenantID)
	if err != nil {
		http.Error(w, "Tenant not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"tenant":             tenant.Name,
		"plan":               tenant.Plan,
		"subscriptionStatus": tenant.SubscriptionStatus,
	})
}

// StripeWebhook receives subscription lifecycle events from Stripe. This
// route is unauthenticated; the payload signature is the authentication.
func (h *BillingHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Failed to read payload", http.StatusBadRequest)
		return
	}

	if err := h.BillingService.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		logging.Logger.Warnf("Event ID: STRIPE_WEBHOOK_REJECTED, Description: %v", err)
		http.Error(w, "Webhook rejected", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
}

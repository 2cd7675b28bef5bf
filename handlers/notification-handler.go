package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jeturing/Segrd-forensics-sub000/models"
	"github.com/jeturing/Segrd-forensics-sub000/services"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// GetNotifications returns the feed for one user. Users read their own feed;
// admins can read anyone's.
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		http.Error(w, "Notifications are not configured", http.StatusServiceUnavailable)
		return
	}

	username := mux.Vars(r)["username"]
	if username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}
	if r.Header.Get("Username") != username {
		if err := checkRole(r, []string{models.RoleAdmin}); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
	}

	notifications, err := h.Service.GetNotificationsByUsername(username)
	if err != nil {
		http.Error(w, "Error fetching notifications", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notifications)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		http.Error(w, "Notifications are not configured", http.StatusServiceUnavailable)
		return
	}

	username := r.Header.Get("Username")
	if username == "" {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	var req struct {
		NotificationID string `json:"notificationId"`
		CreatedAt      string `json:"createdAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.Service.MarkNotificationAsRead(username, req.NotificationID, req.CreatedAt); err != nil {
		http.Error(w, "Failed to mark notification as read", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Notification marked as read"}`))
}

func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		http.Error(w, "Notifications are not configured", http.StatusServiceUnavailable)
		return
	}

	username := r.Header.Get("Username")
	if username == "" {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	var req struct {
		NotificationID string `json:"notificationId"`
		CreatedAt      string `json:"createdAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteNotification(username, req.NotificationID, req.CreatedAt); err != nil {
		http.Error(w, "Failed to delete notification", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Notification deleted"}`))
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationHandlersWithoutStore(t *testing.T) {
	h := NewNotificationHandler(nil)

	rec := httptest.NewRecorder()
	h.GetNotifications(rec, httptest.NewRequest(http.MethodGet, "/api/notifications/alice", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.MarkAsRead(rec, httptest.NewRequest(http.MethodPut, "/api/notifications/read", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.DeleteNotification(rec, httptest.NewRequest(http.MethodDelete, "/api/notifications/delete", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

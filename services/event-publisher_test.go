package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilEventPublisherIsSafe(t *testing.T) {
	var p *EventPublisher

	assert.NotPanics(t, func() {
		p.PublishCaseEvent("case.created", "case-1", "tenant-1")
		p.Close()
	})
}

func TestNilNotificationServiceIsSafe(t *testing.T) {
	var s *NotificationService

	assert.NotPanics(t, func() {
		s.Notify("alice", "report ready")
	})
}

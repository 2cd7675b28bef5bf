package services

import (
	"encoding/json"
	"time"

	"github.com/jeturing/Segrd-forensics-sub000/logging"

	"github.com/nats-io/nats.go"
)

const caseEventsSubject = "segrd.cases.events"

// EventPublisher pushes case lifecycle events onto NATS. A nil publisher is
// valid and drops every event, so callers never have to check.
type EventPublisher struct {
	conn *nats.Conn
}

func NewEventPublisher(url string) (*EventPublisher, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, err
	}
	return &EventPublisher{conn: conn}, nil
}

type caseEvent struct {
	Type     string    `json:"type"`
	CaseID   string    `json:"caseId"`
	TenantID string    `json:"tenantId"`
	At       time.Time `json:"at"`
}

// PublishCaseEvent is best effort: failures are logged and swallowed.
func (p *EventPublisher) PublishCaseEvent(eventType, caseID, tenantID string) {
	if p == nil || p.conn == nil {
		return
	}

	payload, err := json.Marshal(caseEvent{
		Type:     eventType,
		CaseID:   caseID,
		TenantID: tenantID,
		At:       time.Now().UTC(),
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: EVENT_MARSHAL_FAILED, Description: Failed to marshal case event: %v", err)
		return
	}

	if err := p.conn.Publish(caseEventsSubject, payload); err != nil {
		logging.Logger.Warnf("Event ID: EVENT_PUBLISH_FAILED, Description: Failed to publish %s for case %s: %v", eventType, caseID, err)
	}
}

func (p *EventPublisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Close()
	}
}

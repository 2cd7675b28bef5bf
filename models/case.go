package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Case struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID    primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Status      string             `bson:"status" json:"status"`
	Severity    string             `bson:"severity" json:"severity"`
	Assignee    string             `bson:"assignee,omitempty" json:"assignee,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

const (
	CaseStatusOpen       = "open"
	CaseStatusInProgress = "in_progress"
	CaseStatusClosed     = "closed"
)

// Investigation is a single timeline entry inside a case.
type Investigation struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CaseID     primitive.ObjectID `bson:"caseId" json:"caseId"`
	TenantID   primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	Author     string             `bson:"author" json:"author"`
	Action     string             `bson:"action" json:"action"`
	Details    string             `bson:"details" json:"details"`
	OccurredAt time.Time          `bson:"occurredAt" json:"occurredAt"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IOC is an Indicator of Compromise attached to a case.
type IOC struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CaseID    primitive.ObjectID `bson:"caseId" json:"caseId"`
	TenantID  primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	Type      string             `bson:"type" json:"type"`
	Value     string             `bson:"value" json:"value"`
	Severity  string             `bson:"severity" json:"severity"`
	Source    string             `bson:"source,omitempty" json:"source,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

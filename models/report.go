package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CaseID      primitive.ObjectID `bson:"caseId" json:"caseId"`
	TenantID    primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	Format      string             `bson:"format" json:"format"`
	StorageKey  string             `bson:"storageKey" json:"storageKey"`
	Summary     string             `bson:"summary,omitempty" json:"summary,omitempty"`
	GeneratedAt time.Time          `bson:"generatedAt" json:"generatedAt"`
}

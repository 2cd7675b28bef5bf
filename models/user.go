package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID           primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	Username           string             `bson:"username" json:"username"`
	Email              string             `bson:"email" json:"email"`
	Name               string             `bson:"name" json:"name"`
	LastName           string             `bson:"lastName" json:"lastName"`
	Password           string             `bson:"password" json:"password,omitempty"`
	Role               string             `bson:"role" json:"role"`
	IsActive           bool               `bson:"isActive" json:"isActive"`
	VerificationCode   string             `bson:"verificationCode,omitempty" json:"-"`
	VerificationExpiry time.Time          `bson:"verificationExpiry,omitempty" json:"-"`
}

// Roles recognized by the role middleware and handlers.
const (
	RoleAdmin        = "admin"
	RoleInvestigator = "investigator"
	RoleViewer       = "viewer"
)

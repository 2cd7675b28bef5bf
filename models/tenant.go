package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Tenant struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	Plan               string             `bson:"plan" json:"plan"`
	StripeCustomerID   string             `bson:"stripeCustomerId,omitempty" json:"-"`
	SubscriptionID     string             `bson:"subscriptionId,omitempty" json:"-"`
	SubscriptionStatus string             `bson:"subscriptionStatus" json:"subscriptionStatus"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
}

const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

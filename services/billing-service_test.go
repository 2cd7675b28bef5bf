package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jeturing/Segrd-forensics-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
)

func TestPriceForPlan(t *testing.T) {
	svc := &BillingService{
		PriceIDs: map[string]string{
			models.PlanPro: "price_123",
		},
	}

	priceID, err := svc.PriceForPlan(models.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, "price_123", priceID)

	_, err = svc.PriceForPlan("platinum")
	assert.Error(t, err)

	_, err = svc.PriceForPlan(models.PlanEnterprise)
	assert.Error(t, err, "configured plans without a price ID are rejected")
}

func TestApplyEventIgnoresUnknownTypes(t *testing.T) {
	svc := &BillingService{}

	err := svc.ApplyEvent(context.Background(), stripe.Event{Type: "invoice.paid"})
	assert.NoError(t, err)
}

func TestApplyEventRequiresCustomer(t *testing.T) {
	svc := &BillingService{}

	raw, err := json.Marshal(stripe.CheckoutSession{})
	require.NoError(t, err)

	err = svc.ApplyEvent(context.Background(), stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no customer")
}

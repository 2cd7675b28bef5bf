package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jeturing/Segrd-forensics-sub000/logging"
	"github.com/jeturing/Segrd-forensics-sub000/models"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type BillingService struct {
	TenantCollection *mongo.Collection
	WebhookSecret    string
	PriceIDs         map[string]string
}

// NewBillingService configures Stripe from the environment. PriceIDs maps
// plan names to Stripe price identifiers.
func NewBillingService(tenants *mongo.Collection) *BillingService {
	stripe.Key = os.Getenv("STRIPE_API_KEY")

	return &BillingService{
		TenantCollection: tenants,
		WebhookSecret:    os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PriceIDs: map[string]string{
			models.PlanPro:        os.Getenv("STRIPE_PRICE_PRO"),
			models.PlanEnterprise: os.Getenv("STRIPE_PRICE_ENTERPRISE"),
		},
	}
}

// PriceForPlan resolves a plan name to its Stripe price ID.
func (s *BillingService) PriceForPlan(plan string) (string, error) {
	priceID, ok := s.PriceIDs[plan]
	if !ok || priceID == "" {
		return "", fmt.Errorf("unknown or unconfigured plan: %s", plan)
	}
	return priceID, nil
}

// CreateCheckoutSession opens a Stripe subscription checkout for the tenant,
// creating the Stripe customer on first use.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, tenant *models.Tenant, plan string) (string, error) {
	priceID, err := s.PriceForPlan(plan)
	if err != nil {
		return "", err
	}

	customerID := tenant.StripeCustomerID
	if customerID == "" {
		cust, err := customer.New(&stripe.CustomerParams{
			Name: stripe.String(tenant.Name),
			Metadata: map[string]string{
				"tenantId": tenant.ID.Hex(),
			},
		})
		if err != nil {
			return "", fmt.Errorf("failed to create Stripe customer: %v", err)
		}
		customerID = cust.ID

		_, err = s.TenantCollection.UpdateOne(ctx,
			bson.M{"_id": tenant.ID},
			bson.M{"$set": bson.M{"stripeCustomerId": customerID}})
		if err != nil {
			return "", fmt.Errorf("failed to save Stripe customer ID: %v", err)
		}
	}

	baseURL := os.Getenv("FRONTEND_URL")
	if baseURL == "" {
		baseURL = "https://localhost:4200"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(baseURL + "/billing/success"),
		CancelURL:  stripe.String(baseURL + "/billing/cancel"),
		Metadata: map[string]string{
			"tenantId": tenant.ID.Hex(),
			"plan":     plan,
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %v", err)
	}
	return sess.URL, nil
}

// HandleWebhook verifies the Stripe signature and applies the event.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.WebhookSecret)
	if err != nil {
		return fmt.Errorf("webhook signature verification failed: %v", err)
	}
	return s.ApplyEvent(ctx, event)
}

// ApplyEvent updates the tenant subscription state for one Stripe event.
// Unhandled event types are ignored.
func (s *BillingService) ApplyEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("failed to parse checkout session: %v", err)
		}
		plan := sess.Metadata["plan"]
		update := bson.M{"subscriptionStatus": "active"}
		if plan != "" {
			update["plan"] = plan
		}
		if sess.Subscription != nil {
			update["subscriptionId"] = sess.Subscription.ID
		}
		return s.updateByCustomer(ctx, customerIDOf(sess.Customer), update)

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription: %v", err)
		}
		return s.updateByCustomer(ctx, customerIDOf(sub.Customer), bson.M{
			"subscriptionStatus": string(sub.Status),
			"subscriptionId":     sub.ID,
		})

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription: %v", err)
		}
		return s.updateByCustomer(ctx, customerIDOf(sub.Customer), bson.M{
			"subscriptionStatus": "canceled",
			"plan":               models.PlanFree,
		})

	default:
		logging.Logger.Infof("Event ID: STRIPE_EVENT_IGNORED, Description: Ignoring Stripe event type %s.", event.Type)
		return nil
	}
}

func customerIDOf(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func (s *BillingService) updateByCustomer(ctx context.Context, customerID string, set bson.M) error {
	if customerID == "" {
		return fmt.Errorf("stripe event carries no customer")
	}

	result, err := s.TenantCollection.UpdateOne(ctx,
		bson.M{"stripeCustomerId": customerID},
		bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update tenant subscription: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no tenant for Stripe customer %s", customerID)
	}

	logging.Logger.Infof("Event ID: SUBSCRIPTION_UPDATED, Description: Subscription state updated for Stripe customer %s.", customerID)
	return nil
}

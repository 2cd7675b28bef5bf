package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jeturing/Segrd-forensics-sub000/logging"
	"github.com/jeturing/Segrd-forensics-sub000/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CaseService struct {
	CasesCollection    *mongo.Collection
	IOCsCollection     *mongo.Collection
	TimelineCollection *mongo.Collection
	Publisher          *EventPublisher
	Notifications      *NotificationService
}

// NewCaseService initializes a CaseService with the necessary MongoDB
// collections. Publisher and Notifications may be nil; both are best effort.
func NewCaseService(cases, iocs, timeline *mongo.Collection, publisher *EventPublisher, notifications *NotificationService) *CaseService {
	return &CaseService{
		CasesCollection:    cases,
		IOCsCollection:     iocs,
		TimelineCollection: timeline,
		Publisher:          publisher,
		Notifications:      notifications,
	}
}

func (s *CaseService) CreateCase(ctx context.Context, tenantID primitive.ObjectID, c models.Case) (*models.Case, error) {
	if c.Title == "" {
		return nil, fmt.Errorf("case title is required")
	}
	if c.Status == "" {
		c.Status = models.CaseStatusOpen
	}
	if c.Severity == "" {
		c.Severity = models.SeverityMedium
	}

	c.ID = primitive.NewObjectID()
	c.TenantID = tenantID
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	result, err := s.CasesCollection.InsertOne(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create case: %v", err)
	}
	c.ID = result.InsertedID.(primitive.ObjectID)

	s.Publisher.PublishCaseEvent("case.created", c.ID.Hex(), tenantID.Hex())
	if s.Notifications != nil && c.Assignee != "" {
		s.Notifications.Notify(c.Assignee, fmt.Sprintf("Case '%s' was assigned to you.", c.Title))
	}

	return &c, nil
}

func (s *CaseService) GetCases(ctx context.Context, tenantID primitive.ObjectID) ([]models.Case, error) {
	cursor, err := s.CasesCollection.Find(ctx, bson.M{"tenantId": tenantID},
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cases: %v", err)
	}
	defer cursor.Close(ctx)

	var cases []models.Case
	if err := cursor.All(ctx, &cases); err != nil {
		return nil, fmt.Errorf("failed to decode cases: %v", err)
	}
	return cases, nil
}

func (s *CaseService) GetCaseByID(ctx context.Context, tenantID primitive.ObjectID, caseID string) (*models.Case, error) {
	objectID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		return nil, fmt.Errorf("invalid case ID format")
	}

	var c models.Case
	err = s.CasesCollection.FindOne(ctx, bson.M{"_id": objectID, "tenantId": tenantID}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("case not found")
		}
		return nil, fmt.Errorf("error fetching case: %v", err)
	}
	return &c, nil
}

func (s *CaseService) UpdateCase(ctx context.Context, tenantID primitive.ObjectID, caseID string, update models.Case) (*models.Case, error) {
	objectID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		return nil, fmt.Errorf("invalid case ID format")
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Title != "" {
		set["title"] = update.Title
	}
	if update.Description != "" {
		set["description"] = update.Description
	}
	if update.Status != "" {
		set["status"] = update.Status
	}
	if update.Severity != "" {
		set["severity"] = update.Severity
	}
	if update.Assignee != "" {
		set["assignee"] = update.Assignee
	}
	if update.Tags != nil {
		set["tags"] = update.Tags
	}

	result, err := s.CasesCollection.UpdateOne(ctx,
		bson.M{"_id": objectID, "tenantId": tenantID},
		bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to update case: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("case not found")
	}

	s.Publisher.PublishCaseEvent("case.updated", caseID, tenantID.Hex())
	if s.Notifications != nil && update.Assignee != "" {
		s.Notifications.Notify(update.Assignee, fmt.Sprintf("Case %s was assigned to you.", caseID))
	}

	return s.GetCaseByID(ctx, tenantID, caseID)
}

// DeleteCase removes a case together with its IOCs and timeline entries.
func (s *CaseService) DeleteCase(ctx context.Context, tenantID primitive.ObjectID, caseID string) error {
	objectID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		return fmt.Errorf("invalid case ID format")
	}

	result, err := s.CasesCollection.DeleteOne(ctx, bson.M{"_id": objectID, "tenantId": tenantID})
	if err != nil {
		return fmt.Errorf("failed to delete case: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("case not found")
	}

	if _, err := s.IOCsCollection.DeleteMany(ctx, bson.M{"caseId": objectID}); err != nil {
		logging.Logger.Warnf("Event ID: CASE_DELETE_IOC_CLEANUP_FAILED, Description: Failed to delete IOCs for case %s: %v", caseID, err)
	}
	if _, err := s.TimelineCollection.DeleteMany(ctx, bson.M{"caseId": objectID}); err != nil {
		logging.Logger.Warnf("Event ID: CASE_DELETE_TIMELINE_CLEANUP_FAILED, Description: Failed to delete timeline for case %s: %v", caseID, err)
	}

	s.Publisher.PublishCaseEvent("case.deleted", caseID, tenantID.Hex())
	return nil
}

func (s *CaseService) AddIOC(ctx context.Context, tenantID primitive.ObjectID, caseID string, ioc models.IOC) (*models.IOC, error) {
	c, err := s.GetCaseByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, err
	}
	if ioc.Value == "" || ioc.Type == "" {
		return nil, fmt.Errorf("ioc type and value are required")
	}
	if ioc.Severity == "" {
		ioc.Severity = models.SeverityMedium
	}

	ioc.ID = primitive.NewObjectID()
	ioc.CaseID = c.ID
	ioc.TenantID = tenantID
	ioc.CreatedAt = time.Now().UTC()

	if _, err := s.IOCsCollection.InsertOne(ctx, ioc); err != nil {
		return nil, fmt.Errorf("failed to add IOC: %v", err)
	}
	return &ioc, nil
}

func (s *CaseService) GetIOCs(ctx context.Context, tenantID primitive.ObjectID, caseID string) ([]models.IOC, error) {
	objectID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		return nil, fmt.Errorf("invalid case ID format")
	}

	cursor, err := s.IOCsCollection.Find(ctx, bson.M{"caseId": objectID, "tenantId": tenantID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch IOCs: %v", err)
	}
	defer cursor.Close(ctx)

	var iocs []models.IOC
	if err := cursor.All(ctx, &iocs); err != nil {
		return nil, fmt.Errorf("failed to decode IOCs: %v", err)
	}
	return iocs, nil
}

func (s *CaseService) DeleteIOC(ctx context.Context, tenantID primitive.ObjectID, iocID string) error {
	objectID, err := primitive.ObjectIDFromHex(iocID)
	if err != nil {
		return fmt.Errorf("invalid IOC ID format")
	}

	result, err := s.IOCsCollection.DeleteOne(ctx, bson.M{"_id": objectID, "tenantId": tenantID})
	if err != nil {
		return fmt.Errorf("failed to delete IOC: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("IOC not found")
	}
	return nil
}

func (s *CaseService) AddTimelineEntry(ctx context.Context, tenantID primitive.ObjectID, caseID string, entry models.Investigation) (*models.Investigation, error) {
	c, err := s.GetCaseByID(ctx, tenantID, caseID)
	if err != nil {
		return nil, err
	}
	if entry.Action == "" {
		return nil, fmt.Errorf("timeline action is required")
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	entry.ID = primitive.NewObjectID()
	entry.CaseID = c.ID
	entry.TenantID = tenantID

	if _, err := s.TimelineCollection.InsertOne(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add timeline entry: %v", err)
	}
	return &entry, nil
}

func (s *CaseService) GetTimeline(ctx context.Context, tenantID primitive.ObjectID, caseID string) ([]models.Investigation, error) {
	objectID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		return nil, fmt.Errorf("invalid case ID format")
	}

	cursor, err := s.TimelineCollection.Find(ctx,
		bson.M{"caseId": objectID, "tenantId": tenantID},
		options.Find().SetSort(bson.M{"occurredAt": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeline: %v", err)
	}
	defer cursor.Close(ctx)

	var entries []models.Investigation
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode timeline: %v", err)
	}
	return entries, nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jeturing/Segrd-forensics-sub000/handlers"
	"github.com/jeturing/Segrd-forensics-sub000/logging"
	"github.com/jeturing/Segrd-forensics-sub000/metrics"
	"github.com/jeturing/Segrd-forensics-sub000/middleware"
	"github.com/jeturing/Segrd-forensics-sub000/repositories"
	"github.com/jeturing/Segrd-forensics-sub000/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Segrd forensics backend...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_ERROR, Description: Error loading .env file: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "segrd"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	usersCollection := db.Collection("users")
	tenantsCollection := db.Collection("tenants")
	casesCollection := db.Collection("cases")
	iocsCollection := db.Collection("iocs")
	timelineCollection := db.Collection("timeline")
	reportsCollection := db.Collection("reports")

	evidenceRoot := os.Getenv("EVIDENCE_ROOT")
	if evidenceRoot == "" {
		evidenceRoot = "evidence"
	}

	// Cassandra feed is optional; the rest of the backend works without it.
	var notificationService *services.NotificationService
	if os.Getenv("CASS_DB") != "" {
		notificationRepo, err := repositories.NewNotificationRepo()
		if err != nil {
			logging.Logger.Warnf("Event ID: CASS_UNAVAILABLE, Description: Cassandra unavailable, notifications disabled: %v", err)
		} else {
			defer notificationRepo.CloseSession()
			notificationRepo.CreateTable()
			notificationService = services.NewNotificationService(notificationRepo)
		}
	}

	var publisher *services.EventPublisher
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		publisher, err = services.NewEventPublisher(natsURL)
		if err != nil {
			logging.Logger.Warnf("Event ID: NATS_UNAVAILABLE, Description: NATS unavailable, case events disabled: %v", err)
			publisher = nil
		}
	}

	var storage *services.StorageService
	if os.Getenv("S3_ENDPOINT") != "" {
		storage, err = services.NewStorageService(ctx,
			os.Getenv("S3_ENDPOINT"),
			os.Getenv("S3_REGION"),
			os.Getenv("S3_ACCESS_KEY"),
			os.Getenv("S3_SECRET_KEY"),
			os.Getenv("S3_BUCKET"))
		if err != nil {
			logging.Logger.Warnf("Event ID: S3_UNAVAILABLE, Description: Object store unavailable, storage mirroring disabled: %v", err)
			storage = nil
		}
	}

	var exporter *services.GraphExportService
	if neo4jURI := os.Getenv("NEO4J_URI"); neo4jURI != "" {
		driver, err := neo4j.NewDriverWithContext(neo4jURI,
			neo4j.BasicAuth(os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASS"), ""))
		if err != nil {
			logging.Logger.Warnf("Event ID: NEO4J_UNAVAILABLE, Description: Neo4j unavailable, graph export disabled: %v", err)
		} else {
			defer driver.Close(context.Background())
			exporter = services.NewGraphExportService(driver)
		}
	}

	var llmProvider services.LLMProvider
	if providerName := os.Getenv("LLM_PROVIDER"); providerName != "" {
		llmProvider, err = services.NewLLMProvider(providerName,
			os.Getenv("LLM_API_KEY"),
			os.Getenv("LLM_MODEL"),
			os.Getenv("LLM_ENDPOINT"))
		if err != nil {
			logging.Logger.Warnf("Event ID: LLM_UNAVAILABLE, Description: LLM provider misconfigured, summaries disabled: %v", err)
			llmProvider = nil
		}
	}

	blackList, err := services.LoadBlackList("blacklist.txt")
	if err != nil {
		logging.Logger.Warnf("Event ID: BLACKLIST_LOAD_FAILED, Description: Could not load password blacklist: %v", err)
		blackList = map[string]bool{}
	}

	userService := services.NewUserService(usersCollection, tenantsCollection, casesCollection, blackList)
	caseService := services.NewCaseService(casesCollection, iocsCollection, timelineCollection, publisher, notificationService)
	graphBuilder := services.NewGraphBuilderService(evidenceRoot)
	evidenceService := services.NewEvidenceService(evidenceRoot, storage)
	toolRunner := services.NewToolRunnerService(evidenceRoot)
	billingService := services.NewBillingService(tenantsCollection)

	var reportUploader services.Uploader
	if storage != nil {
		reportUploader = storage
	}
	reportService := services.NewReportService(reportsCollection, reportUploader, llmProvider, notificationService)

	httpClient := &http.Client{Timeout: 15 * time.Second}
	lookupService := services.NewLookupService(httpClient, newBreaker("msgraph-cb"), newBreaker("webcheck-cb"))

	loginHandler := &handlers.LoginHandler{UserService: userService}
	userHandler := &handlers.UserHandler{UserService: userService}
	caseHandler := handlers.NewCaseHandler(caseService)
	graphHandler := &handlers.GraphHandler{CaseService: caseService, GraphBuilder: graphBuilder, Exporter: exporter}
	evidenceHandler := &handlers.EvidenceHandler{CaseService: caseService, EvidenceService: evidenceService}
	reportHandler := &handlers.ReportHandler{CaseService: caseService, GraphBuilder: graphBuilder, ReportService: reportService}
	billingHandler := &handlers.BillingHandler{BillingService: billingService, UserService: userService}
	toolHandler := &handlers.ToolHandler{CaseService: caseService, Runner: toolRunner}
	lookupHandler := &handlers.LookupHandler{Service: lookupService}

	r := mux.NewRouter()

	// Public routes.
	r.HandleFunc("/api/auth/register", loginHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/verify", loginHandler.Verify).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", loginHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/forgot-password", loginHandler.ForgotPassword).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/reset-password", loginHandler.ResetPassword).Methods(http.MethodPost)
	r.HandleFunc("/api/billing/webhook", billingHandler.StripeWebhook).Methods(http.MethodPost)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// Everything below requires a valid token.
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	api.HandleFunc("/auth/change-password", loginHandler.ChangePassword).Methods(http.MethodPost)
	api.HandleFunc("/auth/delete-account/{username}", userHandler.DeleteAccountHandler).Methods(http.MethodDelete)
	api.HandleFunc("/users/me", userHandler.GetProfile).Methods(http.MethodGet)

	api.HandleFunc("/cases", caseHandler.CreateCase).Methods(http.MethodPost)
	api.HandleFunc("/cases", caseHandler.ListCases).Methods(http.MethodGet)
	api.HandleFunc("/cases/{id}", caseHandler.GetCaseByID).Methods(http.MethodGet)
	api.HandleFunc("/cases/{id}", caseHandler.UpdateCase).Methods(http.MethodPut)
	api.HandleFunc("/cases/{id}", caseHandler.DeleteCase).Methods(http.MethodDelete)
	api.HandleFunc("/cases/{id}/iocs", caseHandler.AddIOC).Methods(http.MethodPost)
	api.HandleFunc("/cases/{id}/iocs", caseHandler.ListIOCs).Methods(http.MethodGet)
	api.HandleFunc("/cases/{id}/iocs/{iocId}", caseHandler.DeleteIOC).Methods(http.MethodDelete)
	api.HandleFunc("/cases/{id}/timeline", caseHandler.AddTimelineEntry).Methods(http.MethodPost)
	api.HandleFunc("/cases/{id}/timeline", caseHandler.GetTimeline).Methods(http.MethodGet)

	api.HandleFunc("/cases/{id}/graph", graphHandler.GetCaseGraph).Methods(http.MethodGet)
	api.HandleFunc("/cases/{id}/graph/export", graphHandler.ExportCaseGraph).Methods(http.MethodPost)

	api.HandleFunc("/cases/{id}/evidence", evidenceHandler.UploadEvidence).Methods(http.MethodPost)
	api.HandleFunc("/cases/{id}/evidence", evidenceHandler.ListEvidence).Methods(http.MethodGet)

	api.HandleFunc("/cases/{id}/report", reportHandler.GenerateReport).Methods(http.MethodPost)
	api.HandleFunc("/reports/{reportId}", reportHandler.GetReportByID).Methods(http.MethodGet)

	api.HandleFunc("/tools", toolHandler.ListTools).Methods(http.MethodGet)
	api.HandleFunc("/cases/{id}/tools/{tool}/run", toolHandler.RunTool).Methods(http.MethodPost)

	api.HandleFunc("/lookup/webcheck", lookupHandler.WebCheck).Methods(http.MethodGet)
	api.HandleFunc("/lookup/signins", lookupHandler.GetSignIns).Methods(http.MethodGet)

	api.HandleFunc("/billing/checkout", billingHandler.CreateCheckoutSession).Methods(http.MethodPost)
	api.HandleFunc("/billing/subscription", billingHandler.GetSubscription).Methods(http.MethodGet)

	// Routes stay registered without Cassandra; the handler answers 503.
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	api.HandleFunc("/notifications/read", notificationHandler.MarkAsRead).Methods(http.MethodPut)
	api.HandleFunc("/notifications/delete", notificationHandler.DeleteNotification).Methods(http.MethodDelete)
	api.HandleFunc("/notifications/{username}", notificationHandler.GetNotifications).Methods(http.MethodGet)

	// Sweep unverified accounts in the background.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			userService.DeleteExpiredUnverifiedUsers(context.Background())
		}
	}()

	handler := middleware.EnableCORS(metrics.CountRequests(r))

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}
	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, handler); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}

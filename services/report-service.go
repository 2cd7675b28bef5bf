package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/jeturing/Segrd-forensics-sub000/logging"
	"github.com/jeturing/Segrd-forensics-sub000/metrics"
	"github.com/jeturing/Segrd-forensics-sub000/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Uploader is the slice of the object store the report service needs.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

type ReportService struct {
	ReportsCollection *mongo.Collection
	Storage           Uploader
	Provider          LLMProvider
	Notifications     *NotificationService
}

// NewReportService wires the report pipeline. Provider may be nil: reports
// then render without an executive summary.
func NewReportService(reports *mongo.Collection, storage Uploader, provider LLMProvider, notifications *NotificationService) *ReportService {
	return &ReportService{
		ReportsCollection: reports,
		Storage:           storage,
		Provider:          provider,
		Notifications:     notifications,
	}
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><title>Case Report: {{.Case.Title}}</title></head>
<body>
<h1>{{.Case.Title}}</h1>
<p>Status: {{.Case.Status}} | Severity: {{.Case.Severity}} | Risk score: {{.Graph.RiskScore}}/100</p>
<p>{{.Case.Description}}</p>
{{if .Summary}}<h2>Executive Summary</h2><p>{{.Summary}}</p>{{end}}
<h2>Risk Factors</h2>
<ul>
{{range .Graph.RiskFactors}}<li>{{.Label}} (+{{.Weight}})</li>{{else}}<li>No risk factors identified.</li>{{end}}
</ul>
<h2>Entities ({{len .Graph.Nodes}})</h2>
<table border="1">
<tr><th>ID</th><th>Type</th><th>Label</th><th>Severity</th></tr>
{{range .Graph.Nodes}}<tr><td>{{.ID}}</td><td>{{.Type}}</td><td>{{.Label}}</td><td>{{.Severity}}</td></tr>{{end}}
</table>
<h2>Relations ({{len .Graph.Edges}})</h2>
<table border="1">
<tr><th>Source</th><th>Relation</th><th>Target</th></tr>
{{range .Graph.Edges}}<tr><td>{{.Source}}</td><td>{{.Relation}}</td><td>{{.Target}}</td></tr>{{end}}
</table>
<h2>Indicators of Compromise ({{len .IOCs}})</h2>
<table border="1">
<tr><th>Type</th><th>Value</th><th>Severity</th><th>Source</th></tr>
{{range .IOCs}}<tr><td>{{.Type}}</td><td>{{.Value}}</td><td>{{.Severity}}</td><td>{{.Source}}</td></tr>{{end}}
</table>
<p>Generated at {{.GeneratedAt.Format "2006-01-02 15:04:05"}} UTC</p>
</body>
</html>
`))

type reportData struct {
	Case        *models.Case
	Graph       *models.CaseGraph
	IOCs        []models.IOC
	Summary     string
	GeneratedAt time.Time
}

// RenderReportHTML renders the report body. Pure function, no side effects.
func RenderReportHTML(c *models.Case, graph *models.CaseGraph, iocs []models.IOC, summary string) ([]byte, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, reportData{
		Case:        c,
		Graph:       graph,
		IOCs:        iocs,
		Summary:     summary,
		GeneratedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %v", err)
	}
	return buf.Bytes(), nil
}

// GenerateReport renders the case report, asks the LLM for an executive
// summary when a provider is configured, stores the document and records it.
// A failing LLM call degrades to a report without summary, never an error.
func (s *ReportService) GenerateReport(ctx context.Context, c *models.Case, graph *models.CaseGraph, iocs []models.IOC) (*models.Report, error) {
	summary := ""
	if s.Provider != nil {
		var err error
		summary, err = s.summarize(ctx, c, graph)
		if err != nil {
			logging.Logger.Warnf("Event ID: REPORT_LLM_FAILED, Description: LLM summary for case %s failed, continuing without: %v", c.ID.Hex(), err)
			summary = ""
		}
	}

	body, err := RenderReportHTML(c, graph, iocs, summary)
	if err != nil {
		return nil, err
	}

	report := models.Report{
		ID:          primitive.NewObjectID(),
		CaseID:      c.ID,
		TenantID:    c.TenantID,
		Format:      "html",
		Summary:     summary,
		GeneratedAt: time.Now().UTC(),
	}
	report.StorageKey = fmt.Sprintf("reports/%s/%s.html", c.ID.Hex(), report.ID.Hex())

	if s.Storage != nil {
		if err := s.Storage.Upload(ctx, report.StorageKey, body, "text/html"); err != nil {
			return nil, fmt.Errorf("failed to store report: %v", err)
		}
	}

	if _, err := s.ReportsCollection.InsertOne(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to record report: %v", err)
	}

	metrics.ReportsGenerated.Inc()
	if s.Notifications != nil && c.Assignee != "" {
		s.Notifications.Notify(c.Assignee, fmt.Sprintf("Report for case '%s' is ready.", c.Title))
	}

	return &report, nil
}

func (s *ReportService) summarize(ctx context.Context, c *models.Case, graph *models.CaseGraph) (string, error) {
	systemPrompt := "You are a digital forensics analyst. Write a short executive summary of the incident described below. Plain prose, no markdown."

	var sb bytes.Buffer
	fmt.Fprintf(&sb, "Case: %s\nDescription: %s\nRisk score: %d/100\nFindings:\n", c.Title, c.Description, graph.RiskScore)
	for _, f := range graph.RiskFactors {
		fmt.Fprintf(&sb, "- %s (weight %d)\n", f.Label, f.Weight)
	}

	return s.Provider.Summarize(ctx, systemPrompt, sb.String())
}

func (s *ReportService) GetReportByID(ctx context.Context, tenantID primitive.ObjectID, reportID string) (*models.Report, error) {
	objectID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return nil, fmt.Errorf("invalid report ID format")
	}

	var report models.Report
	err = s.ReportsCollection.FindOne(ctx, bson.M{"_id": objectID, "tenantId": tenantID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("report not found")
		}
		return nil, fmt.Errorf("error fetching report: %v", err)
	}
	return &report, nil
}

package services

import (
	"context"
	"testing"

	"github.com/jeturing/Segrd-forensics-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReportHTML(t *testing.T) {
	c := &models.Case{
		Title:       "BEC at corp.test",
		Description: "Mailbox compromise with external forwarding.",
		Status:      models.CaseStatusOpen,
		Severity:    models.SeverityHigh,
	}
	graph := &models.CaseGraph{
		RiskScore: 45,
		Nodes: []models.GraphNode{
			{ID: "user:alice@corp.test", Type: models.NodeTypeUser, Label: "alice@corp.test", Severity: models.SeverityInfo},
		},
		Edges: []models.GraphEdge{
			{Source: "user:alice@corp.test", Target: "ioc:evil.example", Relation: "associated_with"},
		},
		RiskFactors: []models.RiskFactor{
			{Label: "mail forwarding from victim@corp.test to external address", Weight: 20},
		},
	}
	iocs := []models.IOC{
		{Type: "domain", Value: "evil.example", Severity: models.SeverityHigh, Source: "hawk"},
	}

	body, err := RenderReportHTML(c, graph, iocs, "Attacker forwarded mail externally.")
	require.NoError(t, err)

	html := string(body)
	assert.Contains(t, html, "BEC at corp.test")
	assert.Contains(t, html, "Risk score: 45/100")
	assert.Contains(t, html, "Executive Summary")
	assert.Contains(t, html, "Attacker forwarded mail externally.")
	assert.Contains(t, html, "evil.example")
	assert.Contains(t, html, "mail forwarding from victim@corp.test")
}

func TestRenderReportHTMLWithoutSummary(t *testing.T) {
	c := &models.Case{Title: "Empty case"}
	graph := &models.CaseGraph{}

	body, err := RenderReportHTML(c, graph, nil, "")
	require.NoError(t, err)

	html := string(body)
	assert.NotContains(t, html, "Executive Summary")
	assert.Contains(t, html, "No risk factors identified.")
}

func TestRenderReportHTMLEscapesEvidence(t *testing.T) {
	c := &models.Case{Title: "XSS case"}
	graph := &models.CaseGraph{
		Nodes: []models.GraphNode{
			{ID: "file:x", Type: models.NodeTypeFile, Label: "<script>alert(1)</script>"},
		},
	}

	body, err := RenderReportHTML(c, graph, nil, "")
	require.NoError(t, err)
	assert.NotContains(t, string(body), "<script>alert(1)</script>")
}

type stubProvider struct {
	response string
	err      error
	prompts  []string
}

func (s *stubProvider) Summarize(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.prompts = append(s.prompts, userPrompt)
	return s.response, s.err
}

func TestSummarizeIncludesRiskFactors(t *testing.T) {
	stub := &stubProvider{response: "summary"}
	svc := &ReportService{Provider: stub}

	c := &models.Case{Title: "BEC at corp.test", Description: "desc"}
	graph := &models.CaseGraph{
		RiskScore:   45,
		RiskFactors: []models.RiskFactor{{Label: "mail forwarding", Weight: 20}},
	}

	summary, err := svc.summarize(context.Background(), c, graph)
	require.NoError(t, err)
	assert.Equal(t, "summary", summary)

	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], "BEC at corp.test")
	assert.Contains(t, stub.prompts[0], "Risk score: 45/100")
	assert.Contains(t, stub.prompts[0], "mail forwarding")
}

package models

import "time"

// GraphNode is one entity in the attack graph. Nodes are ephemeral: the graph
// is rebuilt from the evidence directory on every request.
type GraphNode struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Label    string         `json:"label"`
	Severity string         `json:"severity"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type GraphEdge struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Relation string         `json:"relation"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RiskFactor is one heuristic contribution to the case risk score.
type RiskFactor struct {
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

type CaseGraph struct {
	CaseID      string       `json:"caseId"`
	RiskScore   int          `json:"riskScore"`
	Nodes       []GraphNode  `json:"nodes"`
	Edges       []GraphEdge  `json:"edges"`
	RiskFactors []RiskFactor `json:"riskFactors,omitempty"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// Node types emitted by the evidence parsers.
const (
	NodeTypeUser    = "user"
	NodeTypeIP      = "ip"
	NodeTypeDevice  = "device"
	NodeTypeIOC     = "ioc"
	NodeTypeRule    = "rule"
	NodeTypeFile    = "file"
	NodeTypeApp     = "app"
	NodeTypeMailbox = "mailbox"
)

const (
	SeverityInfo     = "info"
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

package services

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeturing/Segrd-forensics-sub000/logging"
	"github.com/jeturing/Segrd-forensics-sub000/metrics"
	"github.com/jeturing/Segrd-forensics-sub000/models"

	"github.com/xeipuuv/gojsonschema"
)

// Evidence filenames each tool drops into the case directory.
const (
	FileM365SignIns    = "m365_signins.json"
	FileSparrowAppIDs  = "sparrow_appids.csv"
	FileHawkForwarding = "hawk_forwarding.csv"
	FileLokiScan       = "loki_scan.log"
	FileYaraMatches    = "yara_matches.txt"
	FileCustomEntities = "custom_entities.json"
)

// parseResult is the common shape every per-tool parser emits.
type parseResult struct {
	nodes   []models.GraphNode
	edges   []models.GraphEdge
	factors []models.RiskFactor
}

type m365SignIn struct {
	ID                  string `json:"id"`
	UserPrincipalName   string `json:"userPrincipalName"`
	IPAddress           string `json:"ipAddress"`
	RiskLevelAggregated string `json:"riskLevelAggregated"`
	RiskState           string `json:"riskState"`
	CreatedDateTime     string `json:"createdDateTime"`
	DeviceDetail        struct {
		DisplayName     string `json:"displayName"`
		OperatingSystem string `json:"operatingSystem"`
	} `json:"deviceDetail"`
	Location struct {
		City            string `json:"city"`
		CountryOrRegion string `json:"countryOrRegion"`
	} `json:"location"`
}

// parseM365SignIns reads a Microsoft Graph sign-in export and emits one user
// node per principal, plus ip/device nodes connected to it.
func parseM365SignIns(path string) (parseResult, error) {
	var res parseResult

	data, err := os.ReadFile(path)
	if err != nil {
		return res, err
	}

	var signIns []m365SignIn
	if err := json.Unmarshal(data, &signIns); err != nil {
		return res, fmt.Errorf("failed to unmarshal sign-in export: %v", err)
	}

	for _, si := range signIns {
		if si.UserPrincipalName == "" {
			metrics.GraphParseErrors.Inc()
			logging.Logger.Warnf("Event ID: M365_PARSE_ROW_SKIPPED, Description: Sign-in event %q has no userPrincipalName, skipping.", si.ID)
			continue
		}

		userID := "user:" + si.UserPrincipalName
		res.nodes = append(res.nodes, models.GraphNode{
			ID:       userID,
			Type:     models.NodeTypeUser,
			Label:    si.UserPrincipalName,
			Severity: models.SeverityInfo,
		})

		if si.IPAddress != "" {
			ipID := "ip:" + si.IPAddress
			res.nodes = append(res.nodes, models.GraphNode{
				ID:       ipID,
				Type:     models.NodeTypeIP,
				Label:    si.IPAddress,
				Severity: signInSeverity(si.RiskLevelAggregated),
				Metadata: map[string]any{
					"city":    si.Location.City,
					"country": si.Location.CountryOrRegion,
				},
			})
			res.edges = append(res.edges, models.GraphEdge{
				ID:       "edge:" + userID + ":" + ipID,
				Source:   userID,
				Target:   ipID,
				Relation: "signed_in_from",
				Metadata: map[string]any{"at": si.CreatedDateTime},
			})
		}

		if si.DeviceDetail.DisplayName != "" {
			devID := "device:" + si.DeviceDetail.DisplayName
			res.nodes = append(res.nodes, models.GraphNode{
				ID:       devID,
				Type:     models.NodeTypeDevice,
				Label:    si.DeviceDetail.DisplayName,
				Severity: models.SeverityInfo,
				Metadata: map[string]any{"os": si.DeviceDetail.OperatingSystem},
			})
			res.edges = append(res.edges, models.GraphEdge{
				ID:       "edge:" + userID + ":" + devID,
				Source:   userID,
				Target:   devID,
				Relation: "used_device",
			})
		}

		switch strings.ToLower(si.RiskLevelAggregated) {
		case "high":
			res.factors = append(res.factors, models.RiskFactor{
				Label:  fmt.Sprintf("high risk sign-in for %s", si.UserPrincipalName),
				Weight: 10,
			})
		case "medium":
			res.factors = append(res.factors, models.RiskFactor{
				Label:  fmt.Sprintf("medium risk sign-in for %s", si.UserPrincipalName),
				Weight: 5,
			})
		}
	}

	return res, nil
}

func signInSeverity(riskLevel string) string {
	switch strings.ToLower(riskLevel) {
	case "high":
		return models.SeverityHigh
	case "medium":
		return models.SeverityMedium
	case "low":
		return models.SeverityLow
	default:
		return models.SeverityInfo
	}
}

// parseSparrowCSV reads the Sparrow application audit (AppId, DisplayName,
// Severity, Permissions). Rows with fewer than three columns are skipped.
func parseSparrowCSV(path string) (parseResult, error) {
	var res parseResult

	f, err := os.Open(path)
	if err != nil {
		return res, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.GraphParseErrors.Inc()
			logging.Logger.Warnf("Event ID: SPARROW_PARSE_ROW_SKIPPED, Description: Malformed CSV row in %s: %v", path, err)
			continue
		}
		if header {
			header = false
			continue
		}
		if len(record) < 3 || record[0] == "" {
			metrics.GraphParseErrors.Inc()
			logging.Logger.Warnf("Event ID: SPARROW_PARSE_ROW_SKIPPED, Description: Incomplete Sparrow row in %s, skipping.", path)
			continue
		}

		appID, displayName, severity := record[0], record[1], strings.ToLower(record[2])
		node := models.GraphNode{
			ID:       "app:" + appID,
			Type:     models.NodeTypeApp,
			Label:    displayName,
			Severity: severity,
		}
		if len(record) > 3 {
			node.Metadata = map[string]any{"permissions": record[3]}
		}
		res.nodes = append(res.nodes, node)

		weight := 5
		if severity == models.SeverityHigh || severity == models.SeverityCritical {
			weight = 15
		}
		res.factors = append(res.factors, models.RiskFactor{
			Label:  fmt.Sprintf("suspicious application %s", displayName),
			Weight: weight,
		})
	}

	return res, nil
}

// parseHawkCSV reads the Hawk mailbox forwarding export (Mailbox,
// ForwardingAddress, RuleName).
func parseHawkCSV(path string) (parseResult, error) {
	var res parseResult

	f, err := os.Open(path)
	if err != nil {
		return res, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.GraphParseErrors.Inc()
			logging.Logger.Warnf("Event ID: HAWK_PARSE_ROW_SKIPPED, Description: Malformed CSV row in %s: %v", path, err)
			continue
		}
		if header {
			header = false
			continue
		}
		if len(record) < 2 || record[0] == "" || record[1] == "" {
			metrics.GraphParseErrors.Inc()
			logging.Logger.Warnf("Event ID: HAWK_PARSE_ROW_SKIPPED, Description: Incomplete Hawk row in %s, skipping.", path)
			continue
		}

		mailbox, forward := record[0], record[1]
		mailboxID := "mailbox:" + mailbox
		forwardID := "ioc:" + forward

		res.nodes = append(res.nodes,
			models.GraphNode{
				ID:       mailboxID,
				Type:     models.NodeTypeMailbox,
				Label:    mailbox,
				Severity: models.SeverityMedium,
			},
			models.GraphNode{
				ID:       forwardID,
				Type:     models.NodeTypeIOC,
				Label:    forward,
				Severity: models.SeverityHigh,
				Metadata: map[string]any{"iocType": "email"},
			},
		)

		edge := models.GraphEdge{
			ID:       "edge:" + mailboxID + ":" + forwardID,
			Source:   mailboxID,
			Target:   forwardID,
			Relation: "forwards_to",
		}
		if len(record) > 2 {
			edge.Metadata = map[string]any{"rule": record[2]}
		}
		res.edges = append(res.edges, edge)

		res.factors = append(res.factors, models.RiskFactor{
			Label:  fmt.Sprintf("mail forwarding from %s to external address", mailbox),
			Weight: 20,
		})
	}

	return res, nil
}

// parseLokiLog reads the Loki scanner output. Only ALERT and WARNING lines
// carry signal; everything else is ignored.
func parseLokiLog(path string) (parseResult, error) {
	var res parseResult

	f, err := os.Open(path)
	if err != nil {
		return res, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		var severity string
		var weight int
		switch {
		case strings.HasPrefix(line, "ALERT:"):
			severity = models.SeverityCritical
			weight = 15
			line = strings.TrimSpace(strings.TrimPrefix(line, "ALERT:"))
		case strings.HasPrefix(line, "WARNING:"):
			severity = models.SeverityMedium
			weight = 5
			line = strings.TrimSpace(strings.TrimPrefix(line, "WARNING:"))
		default:
			continue
		}
		if line == "" {
			metrics.GraphParseErrors.Inc()
			logging.Logger.Warnf("Event ID: LOKI_PARSE_LINE_SKIPPED, Description: Empty Loki finding in %s, skipping.", path)
			continue
		}

		res.nodes = append(res.nodes, models.GraphNode{
			ID:       "loki:" + line,
			Type:     models.NodeTypeFile,
			Label:    line,
			Severity: severity,
		})
		res.factors = append(res.factors, models.RiskFactor{
			Label:  fmt.Sprintf("loki finding: %s", line),
			Weight: weight,
		})
	}
	if err := scanner.Err(); err != nil {
		return res, err
	}

	return res, nil
}

// parseYaraMatches reads YARA output lines of the form "<rule> <file>".
// Rules whose name contains "critical" score higher.
func parseYaraMatches(path string) (parseResult, error) {
	var res parseResult

	f, err := os.Open(path)
	if err != nil {
		return res, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			metrics.GraphParseErrors.Inc()
			logging.Logger.Warnf("Event ID: YARA_PARSE_LINE_SKIPPED, Description: Malformed YARA match line in %s, skipping.", path)
			continue
		}

		ruleName, filePath := parts[0], parts[1]
		severity := models.SeverityHigh
		weight := 10
		if strings.Contains(strings.ToLower(ruleName), "critical") {
			severity = models.SeverityCritical
			weight = 25
		}

		ruleID := "rule:" + ruleName
		fileID := "file:" + filePath
		res.nodes = append(res.nodes,
			models.GraphNode{
				ID:       ruleID,
				Type:     models.NodeTypeRule,
				Label:    ruleName,
				Severity: severity,
			},
			models.GraphNode{
				ID:       fileID,
				Type:     models.NodeTypeFile,
				Label:    filePath,
				Severity: severity,
			},
		)
		res.edges = append(res.edges, models.GraphEdge{
			ID:       "edge:" + ruleID + ":" + fileID,
			Source:   ruleID,
			Target:   fileID,
			Relation: "matched",
		})
		res.factors = append(res.factors, models.RiskFactor{
			Label:  fmt.Sprintf("yara rule %s matched %s", ruleName, filePath),
			Weight: weight,
		})
	}
	if err := scanner.Err(); err != nil {
		return res, err
	}

	return res, nil
}

// customEntitiesSchema validates analyst-added evidence before it enters the
// graph. Weights are non-negative so manual entries can only raise the score.
const customEntitiesSchema = `{
	"type": "object",
	"properties": {
		"nodes": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "type", "label"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"type": {"type": "string"},
					"label": {"type": "string"},
					"severity": {"type": "string"},
					"metadata": {"type": "object"}
				}
			}
		},
		"edges": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["source", "target", "relation"],
				"properties": {
					"id": {"type": "string"},
					"source": {"type": "string", "minLength": 1},
					"target": {"type": "string", "minLength": 1},
					"relation": {"type": "string"}
				}
			}
		},
		"riskFactors": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["label", "weight"],
				"properties": {
					"label": {"type": "string"},
					"weight": {"type": "integer", "minimum": 0}
				}
			}
		}
	}
}`

// parseCustomEntities reads analyst-added nodes/edges, validated against the
// JSON schema above.
func parseCustomEntities(path string) (parseResult, error) {
	var res parseResult

	data, err := os.ReadFile(path)
	if err != nil {
		return res, err
	}

	schemaLoader := gojsonschema.NewStringLoader(customEntitiesSchema)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return res, fmt.Errorf("failed to validate custom entities: %v", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return res, fmt.Errorf("custom entities schema violation: %s", strings.Join(msgs, "; "))
	}

	var custom struct {
		Nodes       []models.GraphNode  `json:"nodes"`
		Edges       []models.GraphEdge  `json:"edges"`
		RiskFactors []models.RiskFactor `json:"riskFactors"`
	}
	if err := json.Unmarshal(data, &custom); err != nil {
		return res, fmt.Errorf("failed to unmarshal custom entities: %v", err)
	}

	for i := range custom.Nodes {
		if custom.Nodes[i].Severity == "" {
			custom.Nodes[i].Severity = models.SeverityInfo
		}
	}
	for i := range custom.Edges {
		if custom.Edges[i].ID == "" {
			custom.Edges[i].ID = "edge:" + custom.Edges[i].Source + ":" + custom.Edges[i].Target
		}
	}

	res.nodes = custom.Nodes
	res.edges = custom.Edges
	res.factors = custom.RiskFactors
	return res, nil
}

package services

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jeturing/Segrd-forensics-sub000/logging"
	"github.com/jeturing/Segrd-forensics-sub000/metrics"
	"github.com/jeturing/Segrd-forensics-sub000/models"
)

// GraphBuilderService turns the heterogeneous evidence files of a case into a
// unified attack graph. Graphs are never cached: every call re-reads the
// evidence directory.
type GraphBuilderService struct {
	EvidenceRoot string
}

func NewGraphBuilderService(evidenceRoot string) *GraphBuilderService {
	return &GraphBuilderService{EvidenceRoot: evidenceRoot}
}

// evidenceParser ties one known filename to its parser function.
type evidenceParser struct {
	filename string
	parse    func(path string) (parseResult, error)
}

func (s *GraphBuilderService) parsers() []evidenceParser {
	return []evidenceParser{
		{FileM365SignIns, parseM365SignIns},
		{FileSparrowAppIDs, parseSparrowCSV},
		{FileHawkForwarding, parseHawkCSV},
		{FileLokiScan, parseLokiLog},
		{FileYaraMatches, parseYaraMatches},
		{FileCustomEntities, parseCustomEntities},
	}
}

// BuildCaseGraph assembles the attack graph for one case. A missing evidence
// directory or missing tool files are not errors: absent tools simply
// contribute no evidence.
func (s *GraphBuilderService) BuildCaseGraph(caseID string) (*models.CaseGraph, error) {
	graph := &models.CaseGraph{
		CaseID:      caseID,
		Nodes:       []models.GraphNode{},
		Edges:       []models.GraphEdge{},
		GeneratedAt: time.Now().UTC(),
	}

	caseDir := filepath.Join(s.EvidenceRoot, caseID)
	if info, err := os.Stat(caseDir); err != nil || !info.IsDir() {
		logging.Logger.Infof("Event ID: GRAPH_NO_EVIDENCE, Description: No evidence directory for case %s, returning empty graph.", caseID)
		metrics.GraphBuilds.Inc()
		return graph, nil
	}

	var nodes []models.GraphNode
	var edges []models.GraphEdge
	var factors []models.RiskFactor

	for _, p := range s.parsers() {
		path := filepath.Join(caseDir, p.filename)
		res, err := p.parse(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			// Best-effort continuation: a broken tool export must not take
			// down the whole graph.
			metrics.GraphParseErrors.Inc()
			logging.Logger.Warnf("Event ID: GRAPH_PARSER_FAILED, Description: Parser for %s failed on case %s: %v", p.filename, caseID, err)
			continue
		}
		nodes = append(nodes, res.nodes...)
		edges = append(edges, res.edges...)
		factors = append(factors, res.factors...)
	}

	graph.Nodes = dedupeNodes(nodes)
	graph.Edges = filterEdges(edges, graph.Nodes)
	graph.Edges = append(graph.Edges, inferOrphanEdges(graph.Nodes, graph.Edges)...)
	graph.RiskFactors = factors
	graph.RiskScore = sumRiskScore(factors)

	metrics.GraphBuilds.Inc()
	logging.Logger.Infof("Event ID: GRAPH_BUILT, Description: Built graph for case %s: %d nodes, %d edges, risk score %d.",
		caseID, len(graph.Nodes), len(graph.Edges), graph.RiskScore)

	return graph, nil
}

// dedupeNodes keeps the first occurrence of every node ID.
func dedupeNodes(nodes []models.GraphNode) []models.GraphNode {
	seen := make(map[string]bool)
	out := make([]models.GraphNode, 0, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out
}

// filterEdges drops edges whose endpoints are not present in the node set and
// dedupes edge IDs the same way nodes are deduped.
func filterEdges(edges []models.GraphEdge, nodes []models.GraphNode) []models.GraphEdge {
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}

	seen := make(map[string]bool)
	out := make([]models.GraphEdge, 0, len(edges))
	for _, e := range edges {
		if !present[e.Source] || !present[e.Target] {
			continue
		}
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

// inferOrphanEdges connects IOC nodes that no edge touches to the first user
// node, so isolated indicators stay visible in context.
func inferOrphanEdges(nodes []models.GraphNode, edges []models.GraphEdge) []models.GraphEdge {
	var firstUser string
	for _, n := range nodes {
		if n.Type == models.NodeTypeUser {
			firstUser = n.ID
			break
		}
	}
	if firstUser == "" {
		return nil
	}

	connected := make(map[string]bool)
	for _, e := range edges {
		connected[e.Source] = true
		connected[e.Target] = true
	}

	var inferred []models.GraphEdge
	for _, n := range nodes {
		if n.Type != models.NodeTypeIOC || connected[n.ID] {
			continue
		}
		inferred = append(inferred, models.GraphEdge{
			ID:       "edge:inferred:" + firstUser + ":" + n.ID,
			Source:   firstUser,
			Target:   n.ID,
			Relation: "associated_with",
			Metadata: map[string]any{"inferred": true},
		})
	}
	return inferred
}

// sumRiskScore adds the heuristic weights, clamped to [0, 100].
func sumRiskScore(factors []models.RiskFactor) int {
	score := 0
	for _, f := range factors {
		if f.Weight < 0 {
			continue
		}
		score += f.Weight
	}
	if score > 100 {
		score = 100
	}
	return score
}

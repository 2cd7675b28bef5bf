package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jeturing/Segrd-forensics-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEvidence(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0640))
}

func TestBuildCaseGraphMissingDirectory(t *testing.T) {
	svc := NewGraphBuilderService(t.TempDir())

	graph, err := svc.BuildCaseGraph("no-such-case")
	require.NoError(t, err)

	assert.Equal(t, "no-such-case", graph.CaseID)
	assert.Equal(t, 0, graph.RiskScore)
	assert.Empty(t, graph.Nodes)
	assert.Empty(t, graph.Edges)
}

func TestBuildCaseGraphEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "case-1"), 0750))

	svc := NewGraphBuilderService(root)
	graph, err := svc.BuildCaseGraph("case-1")
	require.NoError(t, err)

	assert.Equal(t, 0, graph.RiskScore)
	assert.Empty(t, graph.Nodes)
}

func TestBuildCaseGraphNodeIDsAreUnique(t *testing.T) {
	root := t.TempDir()
	caseDir := filepath.Join(root, "case-1")

	// The same user signs in twice; both events must collapse to one node.
	writeEvidence(t, caseDir, FileM365SignIns, `[
		{"id": "1", "userPrincipalName": "alice@corp.test", "ipAddress": "10.0.0.1", "riskLevelAggregated": "high"},
		{"id": "2", "userPrincipalName": "alice@corp.test", "ipAddress": "10.0.0.2", "riskLevelAggregated": "low"}
	]`)

	svc := NewGraphBuilderService(root)
	graph, err := svc.BuildCaseGraph("case-1")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, n := range graph.Nodes {
		assert.False(t, seen[n.ID], "duplicate node ID %s", n.ID)
		seen[n.ID] = true
	}
	assert.True(t, seen["user:alice@corp.test"])
	assert.True(t, seen["ip:10.0.0.1"])
	assert.True(t, seen["ip:10.0.0.2"])
}

func TestBuildCaseGraphRiskScoreClamped(t *testing.T) {
	root := t.TempDir()
	caseDir := filepath.Join(root, "case-1")

	// Five critical rule matches sum to 125; the score must stop at 100.
	writeEvidence(t, caseDir, FileYaraMatches, `critical_webshell /tmp/a.aspx
critical_dropper /tmp/b.exe
critical_loader /tmp/c.dll
critical_implant /tmp/d.bin
critical_backdoor /tmp/e.sys
`)

	svc := NewGraphBuilderService(root)
	graph, err := svc.BuildCaseGraph("case-1")
	require.NoError(t, err)

	assert.Equal(t, 100, graph.RiskScore)
}

func TestBuildCaseGraphCriticalEvidenceRaisesScore(t *testing.T) {
	root := t.TempDir()
	caseDir := filepath.Join(root, "case-1")

	writeEvidence(t, caseDir, FileLokiScan, "WARNING: suspicious scheduled task\n")
	svc := NewGraphBuilderService(root)

	baseline, err := svc.BuildCaseGraph("case-1")
	require.NoError(t, err)

	writeEvidence(t, caseDir, FileYaraMatches, "critical_webshell /var/www/shell.php\n")
	withCritical, err := svc.BuildCaseGraph("case-1")
	require.NoError(t, err)

	assert.Greater(t, withCritical.RiskScore, baseline.RiskScore)
}

func TestBuildCaseGraphDropsEdgesWithMissingEndpoints(t *testing.T) {
	root := t.TempDir()
	caseDir := filepath.Join(root, "case-1")

	writeEvidence(t, caseDir, FileCustomEntities, `{
		"nodes": [{"id": "user:bob@corp.test", "type": "user", "label": "bob"}],
		"edges": [{"source": "user:bob@corp.test", "target": "ip:1.2.3.4", "relation": "signed_in_from"}]
	}`)

	svc := NewGraphBuilderService(root)
	graph, err := svc.BuildCaseGraph("case-1")
	require.NoError(t, err)

	assert.Empty(t, graph.Edges, "edge to a node that does not exist must be dropped")
}

func TestBuildCaseGraphInfersOrphanIOCEdges(t *testing.T) {
	root := t.TempDir()
	caseDir := filepath.Join(root, "case-1")

	writeEvidence(t, caseDir, FileM365SignIns, `[
		{"id": "1", "userPrincipalName": "alice@corp.test"}
	]`)
	writeEvidence(t, caseDir, FileCustomEntities, `{
		"nodes": [{"id": "ioc:evil.example", "type": "ioc", "label": "evil.example", "severity": "high"}]
	}`)

	svc := NewGraphBuilderService(root)
	graph, err := svc.BuildCaseGraph("case-1")
	require.NoError(t, err)

	var inferred *models.GraphEdge
	for i := range graph.Edges {
		if graph.Edges[i].Target == "ioc:evil.example" {
			inferred = &graph.Edges[i]
		}
	}
	require.NotNil(t, inferred, "orphan IOC must be connected to the first user")
	assert.Equal(t, "user:alice@corp.test", inferred.Source)
	assert.Equal(t, "associated_with", inferred.Relation)
	assert.Equal(t, true, inferred.Metadata["inferred"])
}

func TestBuildCaseGraphSurvivesBrokenEvidenceFile(t *testing.T) {
	root := t.TempDir()
	caseDir := filepath.Join(root, "case-1")

	writeEvidence(t, caseDir, FileM365SignIns, `{not json at all`)
	writeEvidence(t, caseDir, FileHawkForwarding, "Mailbox,ForwardingAddress\nvictim@corp.test,attacker@evil.example\n")

	svc := NewGraphBuilderService(root)
	graph, err := svc.BuildCaseGraph("case-1")
	require.NoError(t, err)

	// The broken sign-in export is skipped; the Hawk evidence still lands.
	assert.NotEmpty(t, graph.Nodes)
	assert.Equal(t, 20, graph.RiskScore)
}

func TestSumRiskScoreIgnoresNegativeWeights(t *testing.T) {
	score := sumRiskScore([]models.RiskFactor{
		{Label: "a", Weight: 30},
		{Label: "bogus", Weight: -50},
		{Label: "b", Weight: 10},
	})
	assert.Equal(t, 40, score)
}

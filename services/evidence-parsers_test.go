package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jeturing/Segrd-forensics-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0640))
	return path
}

func TestParseSparrowCSVSkipsShortRows(t *testing.T) {
	path := writeTempFile(t, FileSparrowAppIDs, `AppId,DisplayName,Severity,Permissions
app-1,Mail Sync,high,Mail.ReadWrite
app-2,Broken
app-3,Backup Agent,low,Files.Read
`)

	res, err := parseSparrowCSV(path)
	require.NoError(t, err)

	require.Len(t, res.nodes, 2)
	assert.Equal(t, "app:app-1", res.nodes[0].ID)
	assert.Equal(t, "app:app-3", res.nodes[1].ID)

	require.Len(t, res.factors, 2)
	assert.Equal(t, 15, res.factors[0].Weight)
	assert.Equal(t, 5, res.factors[1].Weight)
}

func TestParseHawkCSVEmitsForwardingEdge(t *testing.T) {
	path := writeTempFile(t, FileHawkForwarding, `Mailbox,ForwardingAddress,RuleName
victim@corp.test,attacker@evil.example,auto-fwd
`)

	res, err := parseHawkCSV(path)
	require.NoError(t, err)

	require.Len(t, res.edges, 1)
	assert.Equal(t, "mailbox:victim@corp.test", res.edges[0].Source)
	assert.Equal(t, "ioc:attacker@evil.example", res.edges[0].Target)
	assert.Equal(t, "forwards_to", res.edges[0].Relation)

	require.Len(t, res.factors, 1)
	assert.Equal(t, 20, res.factors[0].Weight)
}

func TestParseLokiLogSeverities(t *testing.T) {
	path := writeTempFile(t, FileLokiScan, `Loki scan started
ALERT: mimikatz.exe found in C:\temp
WARNING: unsigned driver loaded
INFO: scan finished
`)

	res, err := parseLokiLog(path)
	require.NoError(t, err)

	require.Len(t, res.nodes, 2)
	assert.Equal(t, models.SeverityCritical, res.nodes[0].Severity)
	assert.Equal(t, models.SeverityMedium, res.nodes[1].Severity)

	require.Len(t, res.factors, 2)
	assert.Equal(t, 15, res.factors[0].Weight)
	assert.Equal(t, 5, res.factors[1].Weight)
}

func TestParseYaraMatchesCriticalRuleWeighsMore(t *testing.T) {
	path := writeTempFile(t, FileYaraMatches, `# yara 4.3
critical_webshell /var/www/shell.php
generic_packer /tmp/sample.bin
malformed-line-without-file
`)

	res, err := parseYaraMatches(path)
	require.NoError(t, err)

	require.Len(t, res.factors, 2)
	assert.Equal(t, 25, res.factors[0].Weight)
	assert.Equal(t, 10, res.factors[1].Weight)

	// rule + file node per match, one edge each
	assert.Len(t, res.nodes, 4)
	assert.Len(t, res.edges, 2)
	assert.Equal(t, models.SeverityCritical, res.nodes[0].Severity)
}

func TestParseCustomEntitiesRejectsNegativeWeights(t *testing.T) {
	path := writeTempFile(t, FileCustomEntities, `{
		"riskFactors": [{"label": "discount", "weight": -10}]
	}`)

	_, err := parseCustomEntities(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema violation")
}

func TestParseCustomEntitiesDefaults(t *testing.T) {
	path := writeTempFile(t, FileCustomEntities, `{
		"nodes": [{"id": "ioc:1.2.3.4", "type": "ioc", "label": "1.2.3.4"}],
		"edges": [{"source": "ioc:1.2.3.4", "target": "ioc:1.2.3.4", "relation": "self"}]
	}`)

	res, err := parseCustomEntities(path)
	require.NoError(t, err)

	require.Len(t, res.nodes, 1)
	assert.Equal(t, models.SeverityInfo, res.nodes[0].Severity)

	require.Len(t, res.edges, 1)
	assert.Equal(t, "edge:ioc:1.2.3.4:ioc:1.2.3.4", res.edges[0].ID)
}

func TestParseM365SignInsSkipsRowsWithoutPrincipal(t *testing.T) {
	path := writeTempFile(t, FileM365SignIns, `[
		{"id": "1", "ipAddress": "10.0.0.1"},
		{"id": "2", "userPrincipalName": "alice@corp.test", "riskLevelAggregated": "medium"}
	]`)

	res, err := parseM365SignIns(path)
	require.NoError(t, err)

	require.Len(t, res.nodes, 1)
	assert.Equal(t, "user:alice@corp.test", res.nodes[0].ID)

	require.Len(t, res.factors, 1)
	assert.Equal(t, 5, res.factors[0].Weight)
}

func TestParsersReportMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.json")

	_, err := parseM365SignIns(missing)
	assert.True(t, os.IsNotExist(err))

	_, err = parseSparrowCSV(missing)
	assert.True(t, os.IsNotExist(err))
}

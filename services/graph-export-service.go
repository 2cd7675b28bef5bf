package services

import (
	"context"
	"fmt"

	"github.com/jeturing/Segrd-forensics-sub000/logging"
	"github.com/jeturing/Segrd-forensics-sub000/models"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphExportService mirrors an attack graph into Neo4j on explicit request.
// The exported copy is never read back to serve graph requests.
type GraphExportService struct {
	Driver neo4j.DriverWithContext
}

func NewGraphExportService(driver neo4j.DriverWithContext) *GraphExportService {
	return &GraphExportService{Driver: driver}
}

// ExportCaseGraph merges every node and relation of the graph into Neo4j,
// tagged with the case ID so repeated exports stay idempotent.
func (s *GraphExportService) ExportCaseGraph(ctx context.Context, graph *models.CaseGraph) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, node := range graph.Nodes {
			query := `
				MERGE (e:Entity {id: $id, caseId: $caseId})
				SET e.type = $type,
				    e.label = $label,
				    e.severity = $severity
			`
			_, err := tx.Run(ctx, query, map[string]any{
				"id":       node.ID,
				"caseId":   graph.CaseID,
				"type":     node.Type,
				"label":    node.Label,
				"severity": node.Severity,
			})
			if err != nil {
				return nil, err
			}
		}

		for _, edge := range graph.Edges {
			query := `
				MATCH (from:Entity {id: $sourceId, caseId: $caseId}),
				      (to:Entity {id: $targetId, caseId: $caseId})
				MERGE (from)-[r:RELATES {relation: $relation}]->(to)
			`
			_, err := tx.Run(ctx, query, map[string]any{
				"sourceId": edge.Source,
				"targetId": edge.Target,
				"caseId":   graph.CaseID,
				"relation": edge.Relation,
			})
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})

	if err != nil {
		return fmt.Errorf("failed to export graph for case %s: %v", graph.CaseID, err)
	}

	logging.Logger.Infof("Event ID: GRAPH_EXPORTED, Description: Exported %d nodes and %d edges for case %s to Neo4j.",
		len(graph.Nodes), len(graph.Edges), graph.CaseID)
	return nil
}

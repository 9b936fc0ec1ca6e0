// Concept-graph schema for the Neo4j mirror: constraints and indexes over
// Concept nodes (keyed by term canonical string) and LINKED_TO edges.
// Adapted from the teacher's schema.go (same constraint/index/fulltext
// query shape), restructured around spec.md §4.5's term-link graph instead
// of the teacher's Entity/Observation graph.
package knowledge

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// InitializeSchema creates constraints and indexes for the concept graph.
func InitializeSchema(ctx context.Context, client *Neo4jClient, database string) error {
	queries := []string{
		"CREATE CONSTRAINT concept_term_unique IF NOT EXISTS FOR (c:Concept) REQUIRE c.term IS UNIQUE",
		"CREATE INDEX concept_activation_idx IF NOT EXISTS FOR (c:Concept) ON (c.activation)",
	}

	for _, query := range queries {
		_, err := client.ExecuteWrite(ctx, database, func(tx neo4j.ManagedTransaction) (interface{}, error) {
			result, err := tx.Run(ctx, query, nil)
			if err != nil {
				return nil, err
			}
			return result.Consume(ctx)
		})
		if err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	return nil
}

// DropSchema removes all constraints and indexes (for test cleanup).
func DropSchema(ctx context.Context, client *Neo4jClient, database string) error {
	queries := []string{
		"DROP CONSTRAINT concept_term_unique IF EXISTS",
		"DROP INDEX concept_activation_idx IF EXISTS",
	}

	for _, query := range queries {
		_, err := client.ExecuteWrite(ctx, database, func(tx neo4j.ManagedTransaction) (interface{}, error) {
			result, err := tx.Run(ctx, query, nil)
			if err != nil {
				return nil, err
			}
			return result.Consume(ctx)
		})
		if err != nil {
			continue // DROP IF EXISTS: ignore
		}
	}

	return nil
}

// ClearAllData removes every node and relationship (for test cleanup).
func ClearAllData(ctx context.Context, client *Neo4jClient, database string) error {
	query := "MATCH (n) DETACH DELETE n"
	_, err := client.ExecuteWrite(ctx, database, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	return err
}

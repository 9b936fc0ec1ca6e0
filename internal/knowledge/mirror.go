package knowledge

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphMirror mirrors concept-graph mutations to an external store, purely
// for inspection — the kernel never reads state back through it. Publishing
// to a GraphMirror must never block or fail a reasoning cycle: callers
// treat mirror errors as log-worthy, not fatal.
type GraphMirror interface {
	MirrorConcept(ctx context.Context, termCanonical string, activation float64) error
	MirrorLink(ctx context.Context, fromCanonical, toCanonical string, outgoing bool, weight float64) error
	RemoveConcept(ctx context.Context, termCanonical string) error
	Close(ctx context.Context) error
}

// NoopMirror discards every call; the default GraphMirror when no external
// sink is configured.
type NoopMirror struct{}

func (NoopMirror) MirrorConcept(context.Context, string, float64) error            { return nil }
func (NoopMirror) MirrorLink(context.Context, string, string, bool, float64) error { return nil }
func (NoopMirror) RemoveConcept(context.Context, string) error                     { return nil }
func (NoopMirror) Close(context.Context) error                                     { return nil }

// Neo4jMirror mirrors concepts and term links as Concept nodes and
// LINKED_TO relationships.
type Neo4jMirror struct {
	client   *Neo4jClient
	database string
}

// NewNeo4jMirror connects to Neo4j and ensures the concept-graph schema
// exists.
func NewNeo4jMirror(cfg Neo4jConfig) (*Neo4jMirror, error) {
	client, err := NewNeo4jClient(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := InitializeSchema(ctx, client, cfg.Database); err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Neo4jMirror{client: client, database: cfg.Database}, nil
}

// MirrorConcept upserts a Concept node keyed by its term's canonical string.
func (m *Neo4jMirror) MirrorConcept(ctx context.Context, termCanonical string, activation float64) error {
	_, err := m.client.ExecuteWrite(ctx, m.database, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return tx.Run(ctx,
			"MERGE (c:Concept {term: $term}) SET c.activation = $activation",
			map[string]interface{}{"term": termCanonical, "activation": activation})
	})
	return err
}

// MirrorLink upserts a LINKED_TO relationship between two concepts.
func (m *Neo4jMirror) MirrorLink(ctx context.Context, fromCanonical, toCanonical string, outgoing bool, weight float64) error {
	_, err := m.client.ExecuteWrite(ctx, m.database, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return tx.Run(ctx,
			`MERGE (a:Concept {term: $from})
			 MERGE (b:Concept {term: $to})
			 MERGE (a)-[r:LINKED_TO]->(b)
			 SET r.outgoing = $outgoing, r.weight = $weight`,
			map[string]interface{}{"from": fromCanonical, "to": toCanonical, "outgoing": outgoing, "weight": weight})
	})
	return err
}

// RemoveConcept deletes a Concept node and its relationships, mirroring
// spec.md §4.7 eviction.
func (m *Neo4jMirror) RemoveConcept(ctx context.Context, termCanonical string) error {
	_, err := m.client.ExecuteWrite(ctx, m.database, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return tx.Run(ctx, "MATCH (c:Concept {term: $term}) DETACH DELETE c", map[string]interface{}{"term": termCanonical})
	})
	return err
}

// Close releases the underlying Neo4j driver.
func (m *Neo4jMirror) Close(ctx context.Context) error {
	return m.client.Close(ctx)
}

var (
	_ GraphMirror = NoopMirror{}
	_ GraphMirror = (*Neo4jMirror)(nil)
)

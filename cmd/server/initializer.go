package main

import (
	"log"
	"os"

	"nars-kernel/internal/config"
	"nars-kernel/internal/knowledge"
	"nars-kernel/internal/mcpserver"
	"nars-kernel/internal/storage"
	"nars-kernel/pkg/reasoner"
)

// ServerComponents holds every initialized top-level component, extracted
// from main() so initialization can be exercised without starting the MCP
// transport. Grounded on cmd/server/initializer.go's ServerComponents /
// InitializeServer split.
type ServerComponents struct {
	Config   *config.Config
	Storage  storage.Store
	Mirror   knowledge.GraphMirror
	Reasoner *reasoner.Reasoner
	MCP      *mcpserver.KernelServer
}

// InitializeServer builds every component the kernel needs: configuration
// (env > file > defaults), a persistence backend, an optional Neo4j
// mirror, and the Reasoner façade itself.
func InitializeServer() (*ServerComponents, error) {
	components := &ServerComponents{}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	components.Config = cfg
	log.Println("Loaded configuration")

	store, err := storage.NewStorageFromEnv()
	if err != nil {
		return nil, err
	}
	components.Storage = store
	log.Println("Initialized storage backend")

	mirror := newMirror()
	components.Mirror = mirror

	components.Reasoner = reasoner.New(cfg, store, mirror)
	log.Println("Assembled reasoning kernel")

	components.MCP = mcpserver.NewKernelServer(components.Reasoner)
	return components, nil
}

// newMirror builds a Neo4j mirror when NEO4J_URI is set, otherwise a
// NoopMirror. A mirror is always optional and best-effort (spec.md's
// domain stack lists Neo4j as an external, non-blocking concept-graph
// view, never load-bearing for reasoning).
func newMirror() knowledge.GraphMirror {
	if os.Getenv("NEO4J_URI") == "" {
		return knowledge.NoopMirror{}
	}
	mirror, err := knowledge.NewNeo4jMirror(knowledge.DefaultConfig())
	if err != nil {
		log.Printf("Warning: Neo4j mirror unavailable, falling back to no-op: %v", err)
		return knowledge.NoopMirror{}
	}
	log.Println("Initialized Neo4j concept-graph mirror")
	return mirror
}

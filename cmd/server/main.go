// Package main provides the entry point for the reasoning kernel's MCP
// server.
//
// The server is designed to be spawned as a child process by an MCP client
// and communicates via stdio using the Model Context Protocol. It exposes
// spec.md §6's command surface (input, step, run, stop, reset, query) plus
// the supplemented snapshot and get-metrics tools.
//
// Environment variables:
//   - DEBUG: set to "true" to enable debug logging
//   - NARS_*: kernel configuration (see internal/config)
//   - NARS_STORAGE_*: persistence backend (see internal/storage)
//   - NEO4J_*: optional concept-graph mirror (see internal/knowledge)
package main

import (
	"context"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"nars-kernel/internal/storage"
)

func main() {
	if os.Getenv("DEBUG") == "true" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Println("Starting reasoning kernel server in debug mode...")
	}

	components, err := InitializeServer()
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}
	defer func() {
		if err := storage.CloseStorage(components.Storage); err != nil {
			log.Printf("Warning: failed to close storage: %v", err)
		}
	}()

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "nars-kernel-server",
		Version: "1.0.0",
	}, nil)
	log.Println("Created MCP server")

	components.MCP.RegisterTools(mcpServer)
	log.Println("Registered tools: input, step, run, stop, reset, query, snapshot, get-metrics")

	transport := &mcp.StdioTransport{}
	log.Println("Created stdio transport")

	ctx := context.Background()
	log.Println("Starting MCP server...")
	if err := mcpServer.Run(ctx, transport); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

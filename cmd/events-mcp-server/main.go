package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	_ "time/tzdata"

	"etkinlik-bot/internal/app"
	"etkinlik-bot/internal/config"
	"etkinlik-bot/internal/mcptools"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	log.Printf("🚀 Starting Etkinlik MCP Server")

	cfg := config.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to init app: %v", err)
	}
	defer a.Close(context.Background())

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "etkinlik-events-mcp",
		Version: "1.0.0",
	}, nil)
	mcptools.New(a.Engine, a.Store, a.Recorder, cfg.TopK, cfg.StoreTimeout).Register(server)

	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil && ctx.Err() == nil {
		log.Fatalf("❌ MCP server failed: %v", err)
	}
	log.Printf("🛑 MCP server stopped")
}

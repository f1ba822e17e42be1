// shopfloor-mcp exposes the scoring engine, the customer simulator and the
// scenario catalog as an MCP stdio server.
//
// Configuration is read the same way as the HTTP server (SHOPFLOOR_CONFIG and
// SHOPFLOOR_* environment variables); only the score bounds are used.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/shopfloor/internal/config"
	"github.com/okian/shopfloor/internal/domain/catalog"
	"github.com/okian/shopfloor/internal/domain/reply"
	"github.com/okian/shopfloor/internal/domain/scoring"
	"github.com/okian/shopfloor/pkg/logger"
)

const (
	serverName    = "shopfloor-mcp"
	serverVersion = "1.0.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// stdout carries the protocol; logs go to stderr.
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Get().Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	_ = logger.SetLevelString(cfg.LogLevel)

	tools := &toolset{
		catalog:   catalog.Default(),
		engine:    scoring.NewEngine(scoring.WithBounds(cfg.ScoreFloor, cfg.ScoreCeiling)),
		simulator: reply.NewSimulator(),
		maxChars:  cfg.MaxResponseChars,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)
	tools.register(server)

	logger.Get().Info(ctx, "mcp server starting", logger.String("name", serverName))
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Get().Error(ctx, "mcp server stopped", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

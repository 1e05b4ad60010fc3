package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"

	"github.com/airdesk-ai/airdesk/pkg/config"
)

// NewMCPServerInstance creates the MCP server the assistant is exposed through.
func NewMCPServerInstance(cfg *config.ServerConfig, logger *slog.Logger) *server.MCPServer {
	logger.Debug("Creating MCP server instance")
	version := "dev"
	mcpServer := server.NewMCPServer(
		"Airdesk Assistant",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
	)
	logger.Debug("MCP server instance created successfully")
	return mcpServer
}

// registerServerHooks uses fx.Hook to manage the server's lifecycle.
func registerServerHooks(lc fx.Lifecycle, cfg *config.ServerConfig, mcpServer *server.MCPServer, handler *ChatHandler, logger *slog.Logger) {
	var httpServer *http.Server

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			handler.Register(mcpServer)

			switch cfg.Transport.Type {
			case "sse":
				logger.Info("Starting MCP server with 'sse' transport.")
				sseServer := server.NewSSEServer(mcpServer)
				addr := fmt.Sprintf("%s:%d", cfg.Transport.Host, cfg.Transport.Port)
				httpServer = &http.Server{
					Addr:    addr,
					Handler: CORSMiddleware(&cfg.Transport.CORS)(sseServer),
				}
				go func() {
					logger.Info("SSE server listening", "address", addr)
					if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Error("SSE server failed", "error", err)
					}
				}()
			case "stdio":
				logger.Info("Starting MCP server with 'stdio' transport.")
				go func() {
					if err := server.ServeStdio(mcpServer); err != nil {
						logger.Error("Stdio server failed", "error", err)
					}
				}()
			default:
				return fmt.Errorf("unknown transport type: %s", cfg.Transport.Type)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if httpServer != nil {
				logger.Info("Shutting down SSE server gracefully...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			}
			logger.Info("Stdio server shutdown.")
			return nil
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(
		NewMCPServerInstance,
		NewChatHandler,
	),
	fx.Invoke(registerServerHooks),
)

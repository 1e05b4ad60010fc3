package fxapp

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/airdesk-ai/airdesk/internal/application/chat"
	"github.com/airdesk-ai/airdesk/internal/infrastructure/llm"
	"github.com/airdesk-ai/airdesk/internal/infrastructure/statestore"
	"github.com/airdesk-ai/airdesk/internal/server"
	workflowplugins "github.com/airdesk-ai/airdesk/internal/workflow-plugins"
	"github.com/airdesk-ai/airdesk/internal/workflow-plugins/baggagetracking"
	"github.com/airdesk-ai/airdesk/internal/workflow-plugins/flightbooking"
	"github.com/airdesk-ai/airdesk/internal/workflow-plugins/flightstatus"
	"github.com/airdesk-ai/airdesk/internal/workflow-plugins/ordermeals"
	"github.com/airdesk-ai/airdesk/pkg/config"
	"github.com/airdesk-ai/airdesk/pkg/logger"
)

func New() *fx.App {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Default to a verbose logger for debug level
	var fxLogger fx.Option = fx.WithLogger(
		func() fxevent.Logger {
			return &fxevent.ConsoleLogger{W: log.Writer()}
		},
	)

	if cfg.LogLevel != "debug" {
		fxLogger = fx.NopLogger
	}

	return fx.New(
		fxLogger,
		config.Module,
		logger.Module,
		statestore.Module,
		llm.Module,
		chat.Module,
		workflowplugins.Module,
		flightbooking.Module,
		flightstatus.Module,
		baggagetracking.Module,
		ordermeals.Module,
		server.Module,
	)
}

package chat

import (
	"go.uber.org/fx"

	"github.com/airdesk-ai/airdesk/internal/application/engine"
)

var Module = fx.Module("chat",
	fx.Provide(
		engine.NewTransition,
		engine.NewEvaluator,
		NewService,
	),
)

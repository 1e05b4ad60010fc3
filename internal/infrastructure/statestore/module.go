package statestore

import (
	"go.uber.org/fx"

	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
)

var Module = fx.Module("statestore",
	fx.Provide(
		NewRedisClient,
		fx.Annotate(
			NewRedisStore,
			fx.As(new(conversation.Store)),
		),
	),
)

package llm

import (
	"go.uber.org/fx"

	"github.com/airdesk-ai/airdesk/internal/application/chat"
)

var Module = fx.Module("llm",
	fx.Provide(
		NewClient,
		func(c *Client) chat.Classifier { return c },
		func(c *Client) chat.Executor { return c },
		func(c *Client) chat.KnowledgeBase { return c },
	),
)

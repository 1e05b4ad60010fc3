package ordermeals

import (
	"context"
	"fmt"
	"time"

	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/internal/domain/tool"
)

// Onboard menu with per-meal prices.
var mealMenu = map[string]float64{
	"standard":   60.0,
	"vegetarian": 75.0,
	"halal":      80.0,
	"kids":       45.0,
}

const defaultMealPrice = 100.0

func (p *Plugin) Tools() []tool.Tool {
	return []tool.Tool{
		{
			Name:        "collect_meal_order",
			Description: "Record the meal type and quantity the user wants to order.",
			Parameters: tool.ObjectSchema(map[string]any{
				"meal_type": map[string]any{"type": "string", "description": "The type of meal the user wants to order"},
				"quantity":  map[string]any{"type": "integer", "description": "The number of meals the user wants to order"},
			}, "meal_type", "quantity"),
			Handler: p.collectMealOrder,
		},
		{
			Name:        "order_summary",
			Description: "Calculate the total amount for the meal order and summarize it for the user.",
			Parameters:  tool.ObjectSchema(map[string]any{}),
			Handler:     p.orderSummary,
		},
	}
}

func (p *Plugin) collectMealOrder(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	mealType := tool.StringArg(call.Arguments, "meal_type")
	quantity := tool.IntArg(call.Arguments, "quantity")
	if mealType == "" || quantity <= 0 {
		return nil, fmt.Errorf("invalid meal order: type %q, quantity %d", mealType, quantity)
	}

	unitPrice, ok := mealMenu[mealType]
	if !ok {
		unitPrice = defaultMealPrice
	}

	return tool.DataPatch(WorkflowName, map[string]any{
		"meal_type":  mealType,
		"quantity":   quantity,
		"unit_price": unitPrice,
	}, tool.ResultMessage(call, "collect_meal_order",
		fmt.Sprintf("Meal type %s and quantity %d recorded", mealType, quantity))), nil
}

func (p *Plugin) orderSummary(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	var unitPrice, quantity float64
	if ws := call.State.WorkflowData[WorkflowName]; ws != nil {
		unitPrice = tool.FloatArg(ws.CollectedData, "unit_price")
		quantity = tool.FloatArg(ws.CollectedData, "quantity")
	}
	total := unitPrice * quantity

	return tool.DataPatch(WorkflowName, map[string]any{
		"total_amount":  total,
		"calculated_at": time.Now().Format(time.RFC3339),
	}, tool.ResultMessage(call, "order_summary",
		fmt.Sprintf("Order summary: $%.2f", total))), nil
}

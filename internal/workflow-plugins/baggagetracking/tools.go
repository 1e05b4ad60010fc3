package baggagetracking

import (
	"context"
	"fmt"

	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/internal/domain/tool"
)

// Mock claim records; a real deployment would query the baggage
// handling system here.
var claimRecords = map[string]map[string]any{
	"ABC123456": {
		"status":       "COMPENSATION_APPROVED",
		"last_update":  "2024-02-15",
		"compensation": 1500.00,
	},
	"DEF654321": {
		"status":       "IN_REVIEW",
		"last_update":  "2024-02-14",
		"compensation": 0.00,
	},
}

func (p *Plugin) Tools() []tool.Tool {
	return []tool.Tool{
		{
			Name:        "collect_claim_number",
			Description: "Record the baggage claim number provided by the user.",
			Parameters: tool.ObjectSchema(map[string]any{
				"claim_number": map[string]any{"type": "string", "description": "The baggage claim number provided by the user"},
			}, "claim_number"),
			Handler: p.collectClaimNumber,
		},
		{
			Name:        "check_baggage_status",
			Description: "Check the baggage claim status in the backend system and report status, compensation amount and last update.",
			Parameters: tool.ObjectSchema(map[string]any{
				"claim_number": map[string]any{"type": "string", "description": "The baggage claim number to check status for"},
			}, "claim_number"),
			Handler: p.checkBaggageStatus,
		},
	}
}

func (p *Plugin) collectClaimNumber(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	claimNumber := tool.StringArg(call.Arguments, "claim_number")
	if claimNumber == "" {
		return nil, fmt.Errorf("missing claim number")
	}

	return tool.DataPatch(WorkflowName, map[string]any{
		"claim_number": claimNumber,
	}, tool.ResultMessage(call, "collect_claim_number",
		fmt.Sprintf("Claim number %s collected, I will now check the status of the baggage claim", claimNumber))), nil
}

func (p *Plugin) checkBaggageStatus(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	claimNumber := tool.StringArg(call.Arguments, "claim_number")
	if claimNumber == "" {
		if ws := call.State.WorkflowData[WorkflowName]; ws != nil {
			claimNumber = tool.StringArg(ws.CollectedData, "claim_number")
		}
	}
	if claimNumber == "" {
		return nil, fmt.Errorf("missing claim number")
	}

	record, ok := claimRecords[claimNumber]
	if !ok {
		record = map[string]any{
			"status":       "NOT_FOUND",
			"last_update":  "N/A",
			"compensation": 0.00,
		}
	}

	return tool.DataPatch(WorkflowName, map[string]any{
		"claim_number":            claimNumber,
		"baggage_system_response": record,
		"last_update":             record["last_update"],
	}, tool.ResultMessage(call, "check_baggage_status",
		fmt.Sprintf("Status check complete for %s - status: %v, compensation: %v, last update: %v",
			claimNumber, record["status"], record["compensation"], record["last_update"]))), nil
}

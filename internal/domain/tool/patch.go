package tool

import "github.com/airdesk-ai/airdesk/internal/domain/conversation"

// DataPatch builds the common tool result: collected data for one
// workflow plus transcript messages.
func DataPatch(workflowName string, data map[string]any, messages ...conversation.Message) *conversation.Patch {
	return &conversation.Patch{
		WorkflowData: map[string]map[string]any{
			workflowName: {
				"collected_data": data,
			},
		},
		Messages: messages,
	}
}

// ResultMessage builds the transcript entry reporting a tool's outcome.
func ResultMessage(call Call, toolName, content string) conversation.Message {
	return conversation.Message{
		Role:       conversation.RoleTool,
		Content:    content,
		ToolCallID: call.ToolCallID,
		Name:       toolName,
	}
}

// ObjectSchema builds the JSON schema object a tool advertises for its
// parameters.
func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringArg extracts a string argument, tolerating absence.
func StringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// IntArg extracts an integer argument. JSON decoding yields float64 for
// numbers, so both forms are accepted.
func IntArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// FloatArg extracts a numeric argument.
func FloatArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

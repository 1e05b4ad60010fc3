package flightstatus

import (
	"context"
	"fmt"
	"strings"

	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/internal/domain/tool"
)

// Mock departures board; a real deployment would query the operations
// system here.
var scheduledFlights = []map[string]any{
	{
		"flight_number": "XY61",
		"origin":        "RUH",
		"destination":   "JED",
		"departure":     "08:30",
		"arrival":       "10:15",
		"status":        "ON_TIME",
		"aircraft":      "A320neo",
	},
	{
		"flight_number": "XY215",
		"origin":        "JED",
		"destination":   "DXB",
		"departure":     "13:00",
		"arrival":       "16:05",
		"status":        "DELAYED",
		"aircraft":      "A330",
	},
	{
		"flight_number": "XY338",
		"origin":        "RUH",
		"destination":   "CAI",
		"departure":     "18:45",
		"arrival":       "20:50",
		"status":        "BOARDING",
		"aircraft":      "A320",
	},
}

func (p *Plugin) Tools() []tool.Tool {
	return []tool.Tool{
		{
			Name:        "search_flight_status_by_route",
			Description: "Search for flight status by origin airport, destination airport and date. Use this when the user provides origin and destination cities or airports.",
			Parameters: tool.ObjectSchema(map[string]any{
				"origin":      map[string]any{"type": "string", "description": "The departure airport code, e.g. 'RUH' for Riyadh"},
				"destination": map[string]any{"type": "string", "description": "The arrival airport code, e.g. 'JED' for Jeddah"},
				"flight_date": map[string]any{"type": "string", "description": "The date of the flight in YYYY-MM-DD format"},
			}, "origin", "destination", "flight_date"),
			Handler: p.searchByRoute,
		},
		{
			Name:        "search_flight_status_by_number",
			Description: "Search for flight status using a specific flight number and date. Use this when the user provides a flight number, with or without the 'XY' prefix.",
			Parameters: tool.ObjectSchema(map[string]any{
				"flight_number": map[string]any{"type": "string", "description": "The flight number, e.g. '61' or 'XY61'"},
				"flight_date":   map[string]any{"type": "string", "description": "The date of the flight in YYYY-MM-DD format"},
			}, "flight_number", "flight_date"),
			Handler: p.searchByNumber,
		},
		{
			Name:        "display_flight_status",
			Description: "Display the flight status found by an earlier search in a formatted way.",
			Parameters:  tool.ObjectSchema(map[string]any{}),
			Handler:     p.displayStatus,
		},
		{
			Name:        "collect_info",
			Description: "Record the search criteria provided so far, whether the user is searching by route or by flight number.",
			Parameters: tool.ObjectSchema(map[string]any{
				"flight_date":   map[string]any{"type": "string", "description": "The date of the flight in YYYY-MM-DD format"},
				"origin":        map[string]any{"type": "string", "description": "The departure airport code"},
				"destination":   map[string]any{"type": "string", "description": "The arrival airport code"},
				"flight_number": map[string]any{"type": "string", "description": "The flight number"},
			}, "flight_date"),
			Handler: p.collectInfo,
		},
	}
}

func (p *Plugin) searchByRoute(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	origin := strings.ToUpper(tool.StringArg(call.Arguments, "origin"))
	destination := strings.ToUpper(tool.StringArg(call.Arguments, "destination"))
	flightDate := tool.StringArg(call.Arguments, "flight_date")
	if origin == "" || destination == "" || flightDate == "" {
		return nil, fmt.Errorf("missing route search parameters")
	}

	var matches []any
	for _, flight := range scheduledFlights {
		if flight["origin"] == origin && flight["destination"] == destination {
			matches = append(matches, flight)
		}
	}
	if len(matches) == 0 {
		return &conversation.Patch{
			Messages: []conversation.Message{tool.ResultMessage(call, "search_flight_status_by_route",
				fmt.Sprintf("No flights found for the route %s to %s on %s", origin, destination, flightDate))},
		}, nil
	}

	return tool.DataPatch(WorkflowName, map[string]any{
		"flight_status": matches,
		"origin":        origin,
		"destination":   destination,
		"flight_date":   flightDate,
	}, tool.ResultMessage(call, "search_flight_status_by_route",
		"Found the following flights:\n\n"+formatFlights(matches))), nil
}

func (p *Plugin) searchByNumber(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	flightNumber := normalizeFlightNumber(tool.StringArg(call.Arguments, "flight_number"))
	flightDate := tool.StringArg(call.Arguments, "flight_date")
	if flightNumber == "" || flightDate == "" {
		return nil, fmt.Errorf("missing flight number search parameters")
	}

	var matches []any
	for _, flight := range scheduledFlights {
		if normalizeFlightNumber(flight["flight_number"].(string)) == flightNumber {
			matches = append(matches, flight)
		}
	}
	if len(matches) == 0 {
		return &conversation.Patch{
			Messages: []conversation.Message{tool.ResultMessage(call, "search_flight_status_by_number",
				fmt.Sprintf("No flights found for flight number XY%s on %s", flightNumber, flightDate))},
		}, nil
	}

	return tool.DataPatch(WorkflowName, map[string]any{
		"flight_status": matches,
		"flight_number": flightNumber,
		"flight_date":   flightDate,
	}, tool.ResultMessage(call, "search_flight_status_by_number",
		"Found the following flights:\n\n"+formatFlights(matches))), nil
}

func (p *Plugin) displayStatus(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	var found []any
	if ws := call.State.WorkflowData[WorkflowName]; ws != nil {
		found, _ = ws.CollectedData["flight_status"].([]any)
	}
	if len(found) == 0 {
		return &conversation.Patch{
			Messages: []conversation.Message{tool.ResultMessage(call, "display_flight_status",
				"No flight status information available.")},
		}, nil
	}

	return &conversation.Patch{
		Messages: []conversation.Message{tool.ResultMessage(call, "display_flight_status",
			"The flight status is as follows:\n\n"+formatFlights(found))},
	}, nil
}

func (p *Plugin) collectInfo(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	data := map[string]any{}
	for _, field := range []string{"flight_date", "origin", "destination", "flight_number"} {
		if v := tool.StringArg(call.Arguments, field); v != "" {
			data[field] = v
		}
	}

	return tool.DataPatch(WorkflowName, data,
		tool.ResultMessage(call, "collect_info",
			"I have collected all required information for your flight status search.")), nil
}

// Flight numbers arrive as '61', 'XY61' or 'xy 61'.
func normalizeFlightNumber(raw string) string {
	n := strings.ToUpper(strings.TrimSpace(raw))
	n = strings.TrimSpace(strings.TrimPrefix(n, "XY"))
	return n
}

func formatFlights(flights []any) string {
	var lines []string
	for i, entry := range flights {
		if i >= 5 {
			break
		}
		flight, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf(
			"Flight: %v\nFrom: %v\nTo: %v\nDeparture: %v\nArrival: %v\nAircraft: %v\nStatus: %v",
			flight["flight_number"], flight["origin"], flight["destination"],
			flight["departure"], flight["arrival"], flight["aircraft"], flight["status"]))
	}
	return strings.Join(lines, "\n\n")
}

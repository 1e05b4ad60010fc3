package flightbooking

import (
	"context"
	"fmt"

	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/internal/domain/tool"
)

// Mock flight inventory; a real deployment would query the reservation
// system here.
var availableFlights = []any{
	map[string]any{"flight_number": "XY123", "departure": "08:00", "arrival": "10:00", "price": 300.0},
	map[string]any{"flight_number": "XY456", "departure": "12:00", "arrival": "14:00", "price": 450.0},
	map[string]any{"flight_number": "XY789", "departure": "16:00", "arrival": "18:00", "price": 600.0},
}

func (p *Plugin) Tools() []tool.Tool {
	return []tool.Tool{
		{
			Name:        "search_flights",
			Description: "Search for available flights between cities on a specific date.",
			Parameters: tool.ObjectSchema(map[string]any{
				"origin":         map[string]any{"type": "string", "description": "The city of origin for the flight"},
				"destination":    map[string]any{"type": "string", "description": "The destination city for the flight"},
				"departure_date": map[string]any{"type": "string", "description": "The date of departure in YYYY-MM-DD format"},
				"return_date":    map[string]any{"type": "string", "description": "The date of return in YYYY-MM-DD format, if applicable"},
				"passengers":     map[string]any{"type": "integer", "description": "The number of passengers traveling"},
			}, "origin", "destination", "departure_date", "passengers"),
			Handler: p.searchFlights,
		},
		{
			Name:        "select_flight",
			Description: "Select a specific flight by flight number from the available options.",
			Parameters: tool.ObjectSchema(map[string]any{
				"flight_number": map[string]any{"type": "string", "description": "The flight number to select"},
			}, "flight_number"),
			Handler: p.selectFlight,
		},
		{
			Name:        "collect_passenger_info",
			Description: "Record one passenger's personal details for the booking.",
			Parameters: tool.ObjectSchema(map[string]any{
				"first_name":      map[string]any{"type": "string"},
				"last_name":       map[string]any{"type": "string"},
				"passport_number": map[string]any{"type": "string"},
				"dob":             map[string]any{"type": "string", "description": "Date of birth in YYYY-MM-DD format"},
			}, "first_name", "last_name", "passport_number", "dob"),
			Handler: p.collectPassengerInfo,
		},
		{
			Name:        "collect_contact_info",
			Description: "Record the contact email and phone number for the booking.",
			Parameters: tool.ObjectSchema(map[string]any{
				"email": map[string]any{"type": "string"},
				"phone": map[string]any{"type": "string"},
			}, "email", "phone"),
			Handler: p.collectContactInfo,
		},
		{
			Name:        "collect_payment_info",
			Description: "Record the payment card details for the booking.",
			Parameters: tool.ObjectSchema(map[string]any{
				"card_number": map[string]any{"type": "string"},
				"expiration":  map[string]any{"type": "string"},
				"cvv":         map[string]any{"type": "string"},
			}, "card_number", "expiration", "cvv"),
			Handler: p.collectPaymentInfo,
		},
		{
			Name:        "booking_summary",
			Description: "Produce a summary of the booking so far for the user to review.",
			Parameters:  tool.ObjectSchema(map[string]any{}),
			Handler:     p.bookingSummary,
		},
		{
			Name:        "book_flight",
			Description: "Finalize the booking and issue the confirmation number.",
			Parameters:  tool.ObjectSchema(map[string]any{}),
			Handler:     p.bookFlight,
		},
	}
}

func (p *Plugin) searchFlights(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	origin := tool.StringArg(call.Arguments, "origin")
	destination := tool.StringArg(call.Arguments, "destination")
	departureDate := tool.StringArg(call.Arguments, "departure_date")
	passengers := tool.IntArg(call.Arguments, "passengers")

	if origin == "" || destination == "" || departureDate == "" || passengers == 0 {
		return nil, fmt.Errorf("missing required search parameters")
	}

	p.logger.Debug("Searching flights",
		"origin", origin,
		"destination", destination,
		"date", departureDate)

	return tool.DataPatch(WorkflowName, map[string]any{
		"available_options": availableFlights,
		"search_params":     fmt.Sprintf("%s-%s-%s", origin, destination, departureDate),
		"origin":            origin,
		"destination":       destination,
		"departure_date":    departureDate,
		"return_date":       tool.StringArg(call.Arguments, "return_date"),
		"passengers_count":  passengers,
	}, tool.ResultMessage(call, "search_flights",
		fmt.Sprintf("Found %d flights: %v", len(availableFlights), availableFlights))), nil
}

func (p *Plugin) selectFlight(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	flightNumber := tool.StringArg(call.Arguments, "flight_number")

	var selected map[string]any
	if ws := call.State.WorkflowData[WorkflowName]; ws != nil {
		if options, ok := ws.CollectedData["available_options"].([]any); ok {
			for _, option := range options {
				flight, ok := option.(map[string]any)
				if ok && flight["flight_number"] == flightNumber {
					selected = flight
					break
				}
			}
		}
	}
	if selected == nil {
		return nil, fmt.Errorf("invalid flight selection: %q", flightNumber)
	}

	return tool.DataPatch(WorkflowName, map[string]any{
		"selected_flight": selected,
	}, tool.ResultMessage(call, "select_flight",
		fmt.Sprintf("Selected flight %v", selected))), nil
}

func (p *Plugin) collectPassengerInfo(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	passenger := map[string]any{
		"first_name":      tool.StringArg(call.Arguments, "first_name"),
		"last_name":       tool.StringArg(call.Arguments, "last_name"),
		"passport_number": tool.StringArg(call.Arguments, "passport_number"),
		"dob":             tool.StringArg(call.Arguments, "dob"),
	}

	// The merge algebra appends unique list items, so each call adds one
	// passenger without clobbering the ones collected earlier.
	return tool.DataPatch(WorkflowName, map[string]any{
		"passengers": []any{passenger},
	}, tool.ResultMessage(call, "collect_passenger_info",
		fmt.Sprintf("Recorded passenger %s %s", passenger["first_name"], passenger["last_name"]))), nil
}

func (p *Plugin) collectContactInfo(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	contact := map[string]any{
		"email": tool.StringArg(call.Arguments, "email"),
		"phone": tool.StringArg(call.Arguments, "phone"),
	}
	if contact["email"] == "" || contact["phone"] == "" {
		return nil, fmt.Errorf("missing contact information")
	}

	return tool.DataPatch(WorkflowName, map[string]any{
		"contact_info": contact,
	}, tool.ResultMessage(call, "collect_contact_info", "Contact information recorded.")), nil
}

func (p *Plugin) collectPaymentInfo(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	var amount float64
	if ws := call.State.WorkflowData[WorkflowName]; ws != nil {
		amount = tool.FloatArg(ws.CollectedData, "total_amount")
	}

	payment := map[string]any{
		"card_number": tool.StringArg(call.Arguments, "card_number"),
		"expiration":  tool.StringArg(call.Arguments, "expiration"),
		"cvv":         tool.StringArg(call.Arguments, "cvv"),
		"amount":      amount,
	}
	if payment["card_number"] == "" || payment["expiration"] == "" || payment["cvv"] == "" {
		return nil, fmt.Errorf("missing payment details")
	}

	return tool.DataPatch(WorkflowName, map[string]any{
		"payment": payment,
	}, tool.ResultMessage(call, "collect_payment_info", "Payment details recorded.")), nil
}

func (p *Plugin) bookingSummary(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	collected := map[string]any{}
	if ws := call.State.WorkflowData[WorkflowName]; ws != nil {
		collected = ws.CollectedData
	}

	summary := fmt.Sprintf("Booking summary: flight %v, passengers %v, total %v",
		collected["selected_flight"], collected["passengers"], collected["total_amount"])

	return &conversation.Patch{
		Messages: []conversation.Message{tool.ResultMessage(call, "booking_summary", summary)},
	}, nil
}

func (p *Plugin) bookFlight(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
	confirmation := fmt.Sprintf("BK-%06d", len(call.State.Messages)*7919%1000000)

	return tool.DataPatch(WorkflowName, map[string]any{
		"confirmation_number": confirmation,
	}, tool.ResultMessage(call, "book_flight",
		fmt.Sprintf("Flight booked. Confirmation number: %s", confirmation))), nil
}

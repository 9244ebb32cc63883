package dispatch

import (
	"context"
	"fmt"
	"strconv"

	"github.com/appetiteclub/apt"
)

// Result is the outcome of a dispatch: the payload that was (or would be)
// sent, whether it actually went out, and the upstream representation when
// it did. Created stays nil on dry runs and on swallowed redirects.
type Result struct {
	Request CallRequest  `json:"request"`
	Sent    bool         `json:"sent"`
	Created *CreatedCall `json:"created,omitempty"`
}

// Dispatcher turns a matched call and a parsed order into an upstream
// call-creation request.
type Dispatcher struct {
	client Client
	logger apt.Logger
}

func NewDispatcher(client Client, logger apt.Logger) *Dispatcher {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Dispatcher{
		client: client,
		logger: logger,
	}
}

// Dispatch builds the call-creation payload from the matched call, the
// resolved zone and the order description. With dryRun the payload is
// returned unsent for diagnostics. One logical attempt, no retries.
func (d *Dispatcher) Dispatch(ctx context.Context, call CallDefinition, zone *int, description string, dryRun bool) (*Result, error) {
	req := CallRequest{
		IDCallConfig: call.ID,
		IDZone:       zone,
		Description:  description,
	}
	if dryRun {
		return &Result{Request: req}, nil
	}

	d.logger.Info("creating call",
		"call_id", call.ID,
		"call_description", call.Description,
		"zone", ZoneLabel(zone),
	)
	created, err := d.client.CreateCall(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("cannot create call %d: %w", call.ID, err)
	}
	d.logger.Info("call created",
		"call_id", call.ID,
		"zone", ZoneLabel(zone),
	)
	return &Result{Request: req, Sent: true, Created: created}, nil
}

// ZoneLabel renders a nullable zone id for logs and error texts.
func ZoneLabel(zone *int) string {
	if zone == nil {
		return "null"
	}
	return strconv.Itoa(*zone)
}

package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/appetiteclub/bodbridge/internal/bod"
	"github.com/appetiteclub/bodbridge/internal/dispatch"
	"github.com/appetiteclub/bodbridge/pkg/event"
)

// Pipeline stage names used in failure tagging and rejection events.
const (
	StageParsing     = "parsing"
	StageMatching    = "matching"
	StageDispatching = "dispatching"
)

// StageError wraps a pipeline failure with the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Outcome carries everything one successful pipeline run produced.
type Outcome struct {
	Order    *bod.OrderRequest       `json:"order"`
	Call     dispatch.CallDefinition `json:"call"`
	Dispatch *dispatch.Result        `json:"dispatch"`
}

// Bridge runs the parse, match and dispatch pipeline for inbound orders. The
// call-config snapshot is fetched fresh on every run; only zone data is
// cached, inside the resolver.
type Bridge struct {
	client     dispatch.Client
	matcher    *dispatch.Matcher
	dispatcher *dispatch.Dispatcher
	zones      bod.ZoneResolver
	publisher  events.Publisher
	logger     apt.Logger
}

func NewBridge(client dispatch.Client, zones bod.ZoneResolver, publisher events.Publisher, logger apt.Logger) *Bridge {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Bridge{
		client:     client,
		matcher:    dispatch.NewMatcher(logger),
		dispatcher: dispatch.NewDispatcher(client, logger),
		zones:      zones,
		publisher:  publisher,
		logger:     logger,
	}
}

// Process runs the full pipeline on a raw vendor payload. Failures come back
// as a *StageError so the transport layer can render them without ever
// crashing the ingestion path; a rejection event is published per failure.
func (b *Bridge) Process(ctx context.Context, raw []byte, dryRun bool) (*Outcome, error) {
	order, err := b.Parse(ctx, raw)
	if err != nil {
		return nil, b.reject(ctx, StageParsing, err, len(raw))
	}

	call, err := b.MatchDrink(ctx, order.Drink)
	if err != nil {
		return nil, b.reject(ctx, StageMatching, err, len(raw))
	}

	result, err := b.dispatcher.Dispatch(ctx, call, order.Zone, order.Description, dryRun)
	if err != nil {
		return nil, b.reject(ctx, StageDispatching, err, len(raw))
	}

	if result.Sent {
		b.publishDispatched(ctx, order, call)
	}
	return &Outcome{Order: order, Call: call, Dispatch: result}, nil
}

// Parse validates and normalizes a raw vendor payload, resolving the zone.
func (b *Bridge) Parse(ctx context.Context, raw []byte) (*bod.OrderRequest, error) {
	return bod.ParseOrder(ctx, raw, b.zones)
}

// MatchDrink fetches a fresh call-config snapshot and matches the drink
// against it.
func (b *Bridge) MatchDrink(ctx context.Context, drink string) (dispatch.CallDefinition, error) {
	calls, err := b.client.ListCallConfigs(ctx)
	if err != nil {
		return dispatch.CallDefinition{}, fmt.Errorf("cannot list call configs: %w", err)
	}
	return b.matcher.Match(drink, calls)
}

// DryRun runs parse and match, then builds the call payload without
// sending. Diagnostic use only, so failures are returned untagged and no
// rejection event is published.
func (b *Bridge) DryRun(ctx context.Context, raw []byte) (*Outcome, error) {
	order, err := b.Parse(ctx, raw)
	if err != nil {
		return nil, err
	}
	call, err := b.MatchDrink(ctx, order.Drink)
	if err != nil {
		return nil, err
	}
	result, err := b.dispatcher.Dispatch(ctx, call, order.Zone, order.Description, true)
	if err != nil {
		return nil, err
	}
	return &Outcome{Order: order, Call: call, Dispatch: result}, nil
}

// CreateCall sends a prebuilt call request straight upstream, bypassing the
// pipeline. Diagnostic use only.
func (b *Bridge) CreateCall(ctx context.Context, req dispatch.CallRequest) (*dispatch.CreatedCall, error) {
	return b.client.CreateCall(ctx, req)
}

func (b *Bridge) reject(ctx context.Context, stage string, err error, bodySize int) error {
	b.publishRejected(ctx, stage, err, bodySize)
	return &StageError{Stage: stage, Err: err}
}

func (b *Bridge) publishDispatched(ctx context.Context, order *bod.OrderRequest, call dispatch.CallDefinition) {
	if b.publisher == nil {
		return
	}
	evt := event.CallDispatchedEvent{
		EventID:         uuid.New().String(),
		EventType:       event.EventCallDispatched,
		OccurredAt:      time.Now().UTC(),
		Drink:           order.Drink,
		Location:        order.Location,
		ZoneID:          order.Zone,
		CallID:          call.ID,
		CallDescription: call.Description,
		Description:     order.Description,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		b.logger.Error("cannot marshal call dispatched event", "error", err, "call_id", call.ID)
		return
	}
	if err := b.publisher.Publish(ctx, event.BridgeCallsTopic, payload); err != nil {
		b.logger.Error("cannot publish call dispatched event", "error", err, "call_id", call.ID)
	}
}

func (b *Bridge) publishRejected(ctx context.Context, stage string, cause error, bodySize int) {
	if b.publisher == nil {
		return
	}
	evt := event.OrderRejectedEvent{
		EventID:    uuid.New().String(),
		EventType:  event.EventOrderRejected,
		OccurredAt: time.Now().UTC(),
		Stage:      stage,
		Reason:     cause.Error(),
		BodySize:   bodySize,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		b.logger.Error("cannot marshal order rejected event", "error", err, "stage", stage)
		return
	}
	if err := b.publisher.Publish(ctx, event.BridgeCallsTopic, payload); err != nil {
		b.logger.Error("cannot publish order rejected event", "error", err, "stage", stage)
	}
}

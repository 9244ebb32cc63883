package bridge

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"

	"github.com/appetiteclub/bodbridge/internal/bod"
	"github.com/appetiteclub/bodbridge/internal/dispatch"
)

const MaxBodyBytes = 1 << 20

const (
	AppName    = "bodbridge"
	AppVersion = "0.1.0"

	BannerText = AppName + " " + AppVersion + " - BOD order to staff call bridge"
)

type Handler struct {
	bridge *Bridge
	logger apt.Logger
	config *apt.Config
	tlm    *telemetry.HTTP
}

func NewHandler(bridge *Bridge, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		bridge: bridge,
		logger: logger,
		config: config,
		tlm:    telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Banner)
	r.Post("/", h.HandleOrder)
	r.Post("/bod", h.HandleOrder)
	r.Route("/test", func(r chi.Router) {
		r.Post("/parse_request", h.ParseRequest)
		r.Post("/map_request", h.MapRequest)
		r.Post("/dispatch_dryrun", h.DispatchDryRun)
		r.Post("/find_call", h.FindCall)
		r.Post("/create_call", h.CreateCall)
	})
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}

func (h *Handler) Banner(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Banner")
	defer finish()

	respondText(w, BannerText)
}

// HandleOrder is the main ingestion path. The vendor retries or alarms on
// transport-level failures, so every outcome is rendered as 200 text, "OK"
// or a one-line error summary; failures are logged with the full request
// context instead.
func (h *Handler) HandleOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.HandleOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		h.logOrderFailure(log, r, StageParsing, err, raw)
		respondText(w, "ERROR: cannot read order body")
		return
	}

	if _, err := h.bridge.Process(ctx, raw, false); err != nil {
		h.logOrderFailure(log, r, stageOf(err), err, raw)
		respondText(w, "ERROR: "+err.Error())
		return
	}
	respondText(w, "OK")
}

// ParseRequest exercises the parser alone. Unlike the main path, the
// diagnostic endpoints surface real status codes to ease setup.
func (h *Handler) ParseRequest(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ParseRequest")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	raw, ok := h.readBody(w, r, log)
	if !ok {
		return
	}

	order, err := h.bridge.Parse(ctx, raw)
	if err != nil {
		log.Errorf("cannot parse order: %v", err)
		apt.RespondError(w, statusFor(err), err.Error())
		return
	}
	apt.Respond(w, http.StatusOK, order, nil)
}

// MapRequest exercises parse plus match and reports the selected call.
func (h *Handler) MapRequest(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.MapRequest")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	raw, ok := h.readBody(w, r, log)
	if !ok {
		return
	}

	order, err := h.bridge.Parse(ctx, raw)
	if err != nil {
		log.Errorf("cannot parse order: %v", err)
		apt.RespondError(w, statusFor(err), err.Error())
		return
	}

	call, err := h.bridge.MatchDrink(ctx, order.Drink)
	if err != nil {
		log.Errorf("cannot match drink: %v", err)
		apt.RespondError(w, statusFor(err), err.Error())
		return
	}
	apt.Respond(w, http.StatusOK, call, nil)
}

// DispatchDryRun runs the whole pipeline but returns the call payload
// unsent.
func (h *Handler) DispatchDryRun(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DispatchDryRun")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	raw, ok := h.readBody(w, r, log)
	if !ok {
		return
	}

	outcome, err := h.bridge.DryRun(ctx, raw)
	if err != nil {
		log.Errorf("cannot dry-run order: %v", err)
		apt.RespondError(w, statusFor(err), err.Error())
		return
	}
	apt.Respond(w, http.StatusOK, outcome.Dispatch, nil)
}

// FindCall matches a bare drink name, skipping the order envelope.
func (h *Handler) FindCall(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.FindCall")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	req, ok := h.decodeFindCallPayload(w, r, log)
	if !ok {
		return
	}
	if req.Drink == "" {
		apt.RespondError(w, http.StatusBadRequest, "Drink name is required")
		return
	}

	call, err := h.bridge.MatchDrink(ctx, req.Drink)
	if err != nil {
		log.Errorf("cannot match drink: %v", err)
		apt.RespondError(w, statusFor(err), err.Error())
		return
	}
	apt.Respond(w, http.StatusOK, call, nil)
}

// CreateCall forwards a prebuilt call request upstream.
func (h *Handler) CreateCall(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateCall")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	req, ok := h.decodeCallPayload(w, r, log)
	if !ok {
		return
	}

	created, err := h.bridge.CreateCall(ctx, req)
	if err != nil {
		log.Errorf("cannot create call: %v", err)
		apt.RespondError(w, statusFor(err), err.Error())
		return
	}
	apt.Respond(w, http.StatusOK, created, nil)
}

type findCallRequest struct {
	Drink string `json:"drink"`
}

func (h *Handler) decodeFindCallPayload(w http.ResponseWriter, r *http.Request, log apt.Logger) (findCallRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return findCallRequest{}, false
	}

	var req findCallRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("failed to decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return findCallRequest{}, false
	}

	return req, true
}

func (h *Handler) decodeCallPayload(w http.ResponseWriter, r *http.Request, log apt.Logger) (dispatch.CallRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return dispatch.CallRequest{}, false
	}

	var req dispatch.CallRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("failed to decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return dispatch.CallRequest{}, false
	}

	return req, true
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request, log apt.Logger) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}
	return body, true
}

func (h *Handler) logOrderFailure(log apt.Logger, r *http.Request, stage string, err error, raw []byte) {
	log.Error("order rejected",
		"stage", stage,
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"content_type", r.Header.Get("Content-Type"),
		"body_size", len(raw),
		"body", string(raw),
	)
}

func stageOf(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return StageParsing
}

// statusFor maps pipeline failures to diagnostic status codes: envelope
// problems are the caller's fault, an unmatched drink is a lookup miss, and
// upstream trouble is a gateway failure.
func statusFor(err error) int {
	var apiErr *dispatch.APIError
	switch {
	case errors.Is(err, bod.ErrUnsupportedRequestFormat):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrUnsupportedDrink):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

package scoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
	"github.com/wshinigamic/wtg-backend/internal/observability"
	"github.com/wshinigamic/wtg-backend/internal/platform/ctxutil"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

const (
	breakerName     = "scoring-delta"
	maxResponseBody = 4 << 20
)

// Client requests score deltas from the external scoring service.
type Client interface {
	RequestScoreDeltas(ctx context.Context, disliked, neutral []uuid.UUID) (DeltaResult, error)
}

type Config struct {
	Endpoint string
	Timeout  time.Duration

	// BreakerFailures consecutive failures open the breaker for BreakerOpenFor.
	BreakerFailures uint32
	BreakerOpenFor  time.Duration

	HTTPClient *http.Client
	Metrics    *observability.Metrics
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[DeltaResult]
	metrics    *observability.Metrics
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("missing SCORING_SERVICE_ENDPOINT")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerOpenFor <= 0 {
		cfg.BreakerOpenFor = 30 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &client{
		log:        log.With("client", "ScoringClient"),
		cfg:        cfg,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
	}
	c.metrics.SetBreakerState(breakerName, 0)
	c.breaker = gobreaker.NewCircuitBreaker[DeltaResult](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			// caller cancellation is not a service failure
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			c.metrics.SetBreakerState(name, breakerStateValue(to))
		},
	})
	return c, nil
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// RequestScoreDeltas sends both lists in one POST. It does not retry;
// transport failures, non-2xx replies and an open breaker are external
// service errors, malformed replies are protocol errors.
func (c *client) RequestScoreDeltas(ctx context.Context, disliked, neutral []uuid.UUID) (DeltaResult, error) {
	const op = "scoring.request_score_deltas"
	ctx = ctxutil.Default(ctx)
	ctx, span := observability.Tracer().Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.Int("scoring.disliked_count", len(disliked)),
		attribute.Int("scoring.neutral_count", len(neutral)),
	)

	start := time.Now()
	res, err := c.breaker.Execute(func() (DeltaResult, error) {
		return c.do(ctx, op, disliked, neutral)
	})
	outcome := "ok"
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			outcome = "breaker_open"
			err = errs.NewError(errs.CodeExternalService, op, "scoring service circuit open", err)
		case errs.IsCode(err, errs.CodeProtocol):
			outcome = "protocol_error"
		default:
			outcome = "external_error"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		c.log.Warn("Score delta request failed", "outcome", outcome, "error", err)
	}
	c.metrics.ObserveDeltaCall(outcome, time.Since(start))
	if err != nil {
		return DeltaResult{}, err
	}
	return res, nil
}

func (c *client) do(ctx context.Context, op string, disliked, neutral []uuid.UUID) (DeltaResult, error) {
	payload, err := json.Marshal(newDeltaRequest(disliked, neutral))
	if err != nil {
		return DeltaResult{}, errs.Wrap(errs.CodeInternal, op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return DeltaResult{}, errs.Wrap(errs.CodeInternal, op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if td := ctxutil.GetTraceData(ctx); td != nil && td.RequestID != "" {
		req.Header.Set("X-Request-ID", td.RequestID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return DeltaResult{}, errs.NewError(errs.CodeExternalService, op, "scoring service unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return DeltaResult{}, errs.NewError(errs.CodeExternalService, op, "reading scoring response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := parseHTTPError(resp.StatusCode, raw)
		return DeltaResult{}, errs.NewError(errs.CodeExternalService, op, httpErr.Error(), httpErr)
	}

	var body deltaResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return DeltaResult{}, errs.NewError(errs.CodeProtocol, op, "undecodable scoring response", err)
	}
	if err := validate(body, len(disliked), len(neutral)); err != nil {
		return DeltaResult{}, errs.NewError(errs.CodeProtocol, op, err.Error(), nil)
	}
	return DeltaResult{
		DislikedDeltas: body.DislikedDelta,
		DislikedIDs:    body.DislikedPK,
		NeutralDeltas:  body.NeutralDelta,
		NeutralIDs:     body.NeutralPK,
	}, nil
}

func validate(body deltaResponse, wantDisliked, wantNeutral int) error {
	switch {
	case len(body.DislikedDelta) != len(body.DislikedPK):
		return fmt.Errorf("disliked_delta has %d entries, disliked_pk has %d", len(body.DislikedDelta), len(body.DislikedPK))
	case len(body.NeutralDelta) != len(body.NeutralPK):
		return fmt.Errorf("neutral_delta has %d entries, neutral_pk has %d", len(body.NeutralDelta), len(body.NeutralPK))
	case len(body.DislikedPK) != wantDisliked:
		return fmt.Errorf("disliked_pk has %d entries, requested %d", len(body.DislikedPK), wantDisliked)
	case len(body.NeutralPK) != wantNeutral:
		return fmt.Errorf("neutral_pk has %d entries, requested %d", len(body.NeutralPK), wantNeutral)
	}
	return nil
}

package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxel-pathlab/internal/logging"
)

// Solver - внешний решатель: один запрос, один ответ.
// Ошибка, обёрнутая в ErrTransport, означает, что разбираемый ответ не получен.
type Solver interface {
	Solve(ctx context.Context, req Request) (Outcome, error)
}

// FindPathRoute - путь эндпоинта решателя
const FindPathRoute = "/api/find-path"

// maxResponseBytes ограничивает тело ответа решателя
const maxResponseBytes = 8 << 20

// HTTPClient обращается к решателю по HTTP POST с JSON
type HTTPClient struct {
	endpoint string
	http     *http.Client
	tracer   trace.Tracer
	metrics  *Metrics
}

// NewHTTPClient создаёт клиента для решателя по базовому URL (например http://localhost:8080)
func NewHTTPClient(baseURL string, timeout time.Duration, metrics *Metrics) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		endpoint: strings.TrimRight(baseURL, "/") + FindPathRoute,
		http:     &http.Client{Timeout: timeout},
		tracer:   otel.Tracer("voxel-pathlab/solver"),
		metrics:  metrics,
	}
}

// Endpoint возвращает полный URL эндпоинта
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// Solve отправляет запрос и нормализует ответ.
// Тело с полем error считается ошибкой решателя даже при не-2xx статусе.
func (c *HTTPClient) Solve(ctx context.Context, req Request) (Outcome, error) {
	ctx, span := c.tracer.Start(ctx, "solver.find_path", trace.WithAttributes(
		attribute.String("solver.algorithm", req.Algorithm),
		attribute.String("solver.start", req.Start().String()),
		attribute.String("solver.goal", req.Goal().String()),
	))
	defer span.End()

	start := time.Now()
	out, err := c.do(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.observe(req.Algorithm, elapsed.Seconds(), "transport")
		logging.GetSolverLogger().Warn("решатель недоступен (%s, %v): %v", req.Algorithm, elapsed, err)
		return Outcome{}, err
	}

	span.SetAttributes(
		attribute.String("solver.outcome", out.Kind.String()),
		attribute.Int("solver.path_length", len(out.Result.Path)),
	)
	c.metrics.observe(req.Algorithm, elapsed.Seconds(), out.Kind.String())
	logging.GetSolverLogger().Debug("ответ решателя %s: %s, %d точек за %v", req.Algorithm, out.Kind, len(out.Result.Path), elapsed)
	return out, nil
}

func (c *HTTPClient) do(ctx context.Context, req Request) (Outcome, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	out, err := Normalize(raw)
	if err != nil {
		if resp.StatusCode >= 300 {
			return Outcome{}, fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
		}
		return Outcome{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if resp.StatusCode >= 300 && out.Kind != SolverError {
		return Outcome{}, fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
	}
	return out, nil
}

// IsTransport сообщает, что ошибка - сбой транспорта (нужен запасной путь)
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

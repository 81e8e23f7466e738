package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kjstillabower/city-weather-service/internal/client"
	"github.com/kjstillabower/city-weather-service/internal/models"
	"github.com/kjstillabower/city-weather-service/internal/observability"
)

const tracerName = "github.com/kjstillabower/city-weather-service/internal/service"

// maxLoggedBody caps how much of a malformed response is written to the debug log.
const maxLoggedBody = 512

// WeatherClient performs the two upstream calls. Implemented by client.OpenWeatherClient.
type WeatherClient interface {
	Geocode(ctx context.Context, query string) (models.GeocodeResult, error)
	Conditions(ctx context.Context, lat, lon float64) (models.ConditionsResult, error)
}

// LookupService runs the two-stage lookup: text -> coordinates and offset, then
// coordinates -> conditions. It holds no per-lookup state, so concurrent lookups are
// independent; they are neither deduplicated nor cancelled by one another.
type LookupService struct {
	client WeatherClient
	logger *zap.Logger
	tracer trace.Tracer
}

// NewLookupService returns a LookupService using the global otel tracer.
func NewLookupService(client WeatherClient, logger *zap.Logger) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupService{
		client: client,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// SetTracer overrides the tracer used for lookup spans.
func (s *LookupService) SetTracer(tracer trace.Tracer) {
	s.tracer = tracer
}

// lookup is one run of the state machine.
type lookup struct {
	state   State
	query   models.LocationQuery
	geocode models.GeocodeResult
	result  models.ConditionsResult
	err     *LookupError
	logger  *zap.Logger
}

func (l *lookup) transition(to State) {
	mustTransition(l.state, to)
	observability.LookupStateTransitionsTotal.WithLabelValues(l.state.String(), to.String()).Inc()
	l.logger.Debug("lookup state", zap.Stringer("from", l.state), zap.Stringer("to", to))
	l.state = to
}

// Lookup resolves q and returns its conditions. Failures are returned once as a
// *LookupError and never retried. If ctx is cancelled or expires, ctx.Err() is returned
// and no partial result is produced.
func (s *LookupService) Lookup(ctx context.Context, q models.LocationQuery) (models.ConditionsResult, error) {
	start := time.Now()
	path := queryPath(q)
	logger := observability.LoggerFromContext(ctx, s.logger).With(zap.String("path", path))

	ctx, span := s.tracer.Start(ctx, "lookup", trace.WithAttributes(attribute.String("lookup.path", path)))
	defer span.End()

	l := &lookup{state: StateIdle, query: q, logger: logger}
	for !l.state.Terminal() {
		if err := ctx.Err(); err != nil {
			s.finish(span, path, "canceled", start)
			logger.Debug("lookup abandoned", zap.Stringer("state", l.state), zap.Error(err))
			return models.ConditionsResult{}, err
		}
		switch l.state {
		case StateIdle:
			s.begin(l)
		case StateGeocodingInFlight:
			s.resolve(ctx, l)
		case StateConditionsInFlight:
			s.fetchConditions(ctx, l)
		}
	}

	if l.state != StateCompleted {
		s.logFailure(logger, l.err)
		span.RecordError(l.err)
		s.finish(span, path, l.err.Kind.String(), start)
		return models.ConditionsResult{}, l.err
	}

	observability.RecordWeatherQuery(l.result.LocationName)
	s.finish(span, path, "completed", start)
	logger.Debug("lookup completed",
		zap.String("location", l.result.LocationName),
		zap.Int32("utc_offset", l.result.UTCOffsetSeconds),
		zap.Duration("duration", time.Since(start)))
	return l.result, nil
}

// Outcome is what LookupAsync delivers.
type Outcome struct {
	Result models.ConditionsResult
	Err    error
}

// LookupAsync runs Lookup in the background. The channel receives exactly one Outcome
// and is closed, unless ctx is done first, in which case it is closed without a value.
func (s *LookupService) LookupAsync(ctx context.Context, q models.LocationQuery) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		result, err := s.Lookup(ctx, q)
		if ctx.Err() != nil {
			return
		}
		ch <- Outcome{Result: result, Err: err}
	}()
	return ch
}

func (s *LookupService) begin(l *lookup) {
	if !l.query.IsCoordinates() {
		l.transition(StateGeocodingInFlight)
		return
	}
	// Current-location path: the caller already knows where it is.
	l.geocode = models.GeocodeResult{
		Latitude:         l.query.Coordinates.Latitude,
		Longitude:        l.query.Coordinates.Longitude,
		DisplayName:      l.query.DisplayName,
		UTCOffsetSeconds: l.query.UTCOffsetSeconds,
	}
	l.transition(StateConditionsInFlight)
}

func (s *LookupService) resolve(ctx context.Context, l *lookup) {
	ctx, span := s.tracer.Start(ctx, "lookup.geocode")
	defer span.End()

	geo, err := s.client.Geocode(ctx, l.query.Text)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		l.err = translateError(StageGeocode, err)
		span.SetStatus(codes.Error, l.err.Kind.String())
		l.transition(StateGeocodeFailed)
		return
	}
	span.SetAttributes(
		attribute.Float64("geo.latitude", geo.Latitude),
		attribute.Float64("geo.longitude", geo.Longitude),
		attribute.Int("geo.utc_offset", int(geo.UTCOffsetSeconds)),
	)
	l.geocode = geo
	l.transition(StateConditionsInFlight)
}

func (s *LookupService) fetchConditions(ctx context.Context, l *lookup) {
	ctx, span := s.tracer.Start(ctx, "lookup.conditions")
	defer span.End()

	result, err := s.client.Conditions(ctx, l.geocode.Latitude, l.geocode.Longitude)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		l.err = translateError(StageConditions, err)
		span.SetStatus(codes.Error, l.err.Kind.String())
		l.transition(StateConditionsFailed)
		return
	}

	// The conditions endpoint's own timezone_offset is not trusted for display.
	result.UTCOffsetSeconds = l.geocode.UTCOffsetSeconds
	result.LocationName = l.geocode.DisplayName
	if result.LocationName == "" {
		result.LocationName = l.query.FallbackName()
	}
	l.result = result
	l.transition(StateCompleted)
}

func (s *LookupService) finish(span trace.Span, path, outcome string, start time.Time) {
	observability.LookupsTotal.WithLabelValues(path, outcome).Inc()
	observability.LookupDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("lookup.outcome", outcome))
	if outcome != "completed" {
		span.SetStatus(codes.Error, outcome)
	}
}

func (s *LookupService) logFailure(logger *zap.Logger, le *LookupError) {
	fields := []zap.Field{
		zap.String("stage", string(le.Stage)),
		zap.Stringer("kind", le.Kind),
		zap.String("category", string(client.CategorizeError(le.Err))),
	}
	switch le.Kind {
	case KindAPIError:
		logger.Info("lookup rejected by weather api", append(fields, zap.String("code", le.Code), zap.String("message", le.Message))...)
	case KindDecodeFailure:
		logger.Warn("weather api response malformed", append(fields, zap.Error(le.Err))...)
		var malformed *client.MalformedError
		if errors.As(le.Err, &malformed) {
			body := malformed.Body
			if len(body) > maxLoggedBody {
				body = body[:maxLoggedBody]
			}
			logger.Debug("malformed response body", zap.ByteString("body", body))
		}
	default:
		logger.Warn("weather api unreachable", append(fields, zap.Error(le.Err))...)
	}
}

func queryPath(q models.LocationQuery) string {
	if q.IsCoordinates() {
		return "coordinates"
	}
	return "text"
}

// reporter.go turns raised errors, exceptions and shutdown errors into
// reports submitted to a hub.

package errhandler

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/errhub/sentry-errorhandler/pkg/errhandler/metrics"
)

const (
	errorIDTag    = "error_id"
	errorContext  = "error"
	systemContext = "system"
)

// ErrNoHub is returned when the hub accessor hands out a nil hub.
var ErrNoHub = errors.New("errhandler: hub accessor returned no hub")

// ReporterOption configures a Reporter.
type ReporterOption func(*reporterConfig)

type reporterConfig struct {
	context            ContextProvider
	sanitizer          *Sanitizer
	hubs               HubAccessor
	errorViewerBaseURL string
	logger             *zap.Logger
	startTime          *time.Time
}

// WithContextProvider sets where user, tags, contexts and extras come from.
func WithContextProvider(provider ContextProvider) ReporterOption {
	return func(c *reporterConfig) {
		c.context = provider
	}
}

// WithSanitizer passes contexts and extras through s before they are set.
func WithSanitizer(s *Sanitizer) ReporterOption {
	return func(c *reporterConfig) {
		c.sanitizer = s
	}
}

// WithHubAccessor sets the accessor used to obtain the hub for each report.
func WithHubAccessor(accessor HubAccessor) ReporterOption {
	return func(c *reporterConfig) {
		c.hubs = accessor
	}
}

// WithErrorViewerBaseURL adds a "link" of baseURL+errorID to the error context.
// No separator is inserted; include a trailing slash if one is needed.
func WithErrorViewerBaseURL(baseURL string) ReporterOption {
	return func(c *reporterConfig) {
		c.errorViewerBaseURL = baseURL
	}
}

// WithLogger sets the logger used for debug output and capture failures.
func WithLogger(logger *zap.Logger) ReporterOption {
	return func(c *reporterConfig) {
		c.logger = logger
	}
}

// WithSystemState adds a "system" context with memory, goroutine and uptime
// figures measured from startTime.
func WithSystemState(startTime time.Time) ReporterOption {
	return func(c *reporterConfig) {
		c.startTime = &startTime
	}
}

// Reporter submits errors to a hub with a freshly populated scope.
//
// Reporter keeps no per-report state. Whether concurrent reports share a
// scope depends on the hub handed out by the accessor.
type Reporter struct {
	context            ContextProvider
	sanitizer          *Sanitizer
	hubs               HubAccessor
	errorViewerBaseURL string
	logger             *zap.Logger
	startTime          *time.Time
}

// NewReporter creates a Reporter with the given options.
func NewReporter(opts ...ReporterOption) *Reporter {
	cfg := &reporterConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.context == nil {
		cfg.context = EmptyContext{}
	}
	if cfg.hubs == nil {
		cfg.hubs = StaticHub(noopHub{})
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	return &Reporter{
		context:            cfg.context,
		sanitizer:          cfg.sanitizer,
		hubs:               cfg.hubs,
		errorViewerBaseURL: cfg.errorViewerBaseURL,
		logger:             cfg.logger,
		startTime:          cfg.startTime,
	}
}

// HandleError reports a raised error.
func (r *Reporter) HandleError(level Level, message, file string, line int, errorID string, isFatal bool, backtrace ...Frame) error {
	exception := NewErrorException(level, message, file, line)
	exception.Fatal = isFatal
	exception.Backtrace = backtrace

	return r.send(metrics.KindError, exception, errorID)
}

// HandleException reports an error value as is.
func (r *Reporter) HandleException(err error, errorID string) error {
	if err == nil {
		return ErrNilException
	}
	return r.send(metrics.KindException, err, errorID)
}

// HandleShutdown reports a fatal error found while the process shuts down.
func (r *Reporter) HandleShutdown(level Level, message, file string, line int, errorID string) error {
	exception := NewErrorException(level, message, file, line)
	exception.Fatal = true

	return r.send(metrics.KindShutdown, exception, errorID)
}

// send configures a clean scope for errorID and captures exception.
// Hub failures are returned to the caller.
func (r *Reporter) send(kind string, exception error, errorID string) error {
	hub := r.hubs.Hub()
	if hub == nil {
		metrics.RecordReportFailure(kind)
		return ErrNoHub
	}

	hub.ConfigureScope(func(scope Scope) {
		scope.Clear()

		scope.SetTag(errorIDTag, errorID)
		scope.SetContext(errorContext, r.errorContext(errorID))

		if r.startTime != nil {
			scope.SetContext(systemContext, CaptureSystemState(*r.startTime).Context())
		}

		r.addContextData(scope)
	})

	eventID, err := hub.CaptureException(exception)
	if err != nil {
		metrics.RecordReportFailure(kind)
		r.logger.Error("failed to capture exception",
			zap.String("kind", kind),
			zap.String("error_id", errorID),
			zap.Error(err),
		)
		return fmt.Errorf("capture %s %s: %w", kind, errorID, err)
	}

	metrics.RecordReport(kind)
	r.logger.Debug("exception captured",
		zap.String("kind", kind),
		zap.String("error_id", errorID),
		zap.String("event_id", eventID),
	)

	return nil
}

func (r *Reporter) errorContext(errorID string) map[string]any {
	ctx := map[string]any{"id": errorID}

	if r.errorViewerBaseURL != "" {
		ctx["link"] = r.errorViewerBaseURL + errorID
	}

	return ctx
}

// addContextData copies the provider's data onto scope: user, then tags,
// contexts and extras. Keys are visited in sorted order.
func (r *Reporter) addContextData(scope Scope) {
	if user := r.context.User(); len(user) > 0 {
		scope.SetUser(user)
	}

	tags := r.context.Tags()
	for _, key := range slices.Sorted(maps.Keys(tags)) {
		scope.SetTag(key, tags[key])
	}

	contexts := r.context.Contexts()
	for _, key := range slices.Sorted(maps.Keys(contexts)) {
		value := contexts[key]
		if r.sanitizer != nil {
			value = r.sanitizer.CleanUp(value)
		}
		scope.SetContext(key, value)
	}

	extras := r.context.Extras()
	if r.sanitizer != nil && len(extras) > 0 {
		extras = r.sanitizer.CleanUp(extras)
	}
	for _, key := range slices.Sorted(maps.Keys(extras)) {
		scope.SetExtra(key, extras[key])
	}
}

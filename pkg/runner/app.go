package runner

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/avi3tal/functionsagent/pkg/node"
)

// Listener is awaited for new batches of items to run the node with.
// For example, it might be reading from a stream or firing on a schedule.
type Listener interface {
	// WaitForEvent blocks until a new batch is available or context is done.
	// io.EOF signals that no more batches will arrive.
	WaitForEvent(ctx context.Context) ([]node.Item, error)
}

// Callback is invoked after execution (success or error).
type Callback interface {
	OnComplete(ctx context.Context, result Result) error
	OnError(ctx context.Context, err error) error
}

// Recorder observes invocation outcomes, e.g. as metrics.
type Recorder interface {
	ObserveInvocation(status string, d time.Duration)
}

// App runs a node once per batch, either on demand or for every event of a Listener.
type App struct {
	node     Node
	params   node.Parameters
	listener Listener
	callback Callback
	recorder Recorder
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// AppOption is a functional option that configures the App.
type AppOption func(*App)

func WithListener(l Listener) AppOption {
	return func(a *App) {
		a.listener = l
	}
}

func WithCallback(cb Callback) AppOption {
	return func(a *App) {
		a.callback = cb
	}
}

func WithRecorder(r Recorder) AppOption {
	return func(a *App) {
		a.recorder = r
	}
}

// WithRateLimit bounds how often the node is invoked.
func WithRateLimit(r rate.Limit, burst int) AppOption {
	return func(a *App) {
		if burst < 1 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(r, burst)
	}
}

func WithLogger(l *slog.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

func NewApp(n Node, params node.Parameters, opts ...AppOption) (*App, error) {
	if n == nil {
		return nil, errors.New("NewApp: node is required")
	}
	app := &App{
		node:   n,
		params: params,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(app)
	}
	app.logger = app.logger.With("node", n.Name())
	return app, nil
}

// Invoke runs the node *once* with the given items.
// If the App has a callback set, OnComplete/OnError is called here.
func (app *App) Invoke(ctx context.Context, items []node.Item) (Result, error) {
	if app.limiter != nil {
		if err := app.limiter.Wait(ctx); err != nil {
			return Result{Status: StatusFailed}, errors.Wrap(err, "invoke: rate limiter")
		}
	}

	exec := node.NewExecution(app.params, items, node.WithLogger(app.logger))
	start := time.Now()
	out, err := app.node.Execute(ctx, exec)
	result := Result{
		ExecutionID: exec.ID(),
		Status:      StatusCompleted,
		Output:      out,
		Duration:    time.Since(start),
	}
	if err != nil {
		result.Status = StatusFailed
	}
	if app.recorder != nil {
		app.recorder.ObserveInvocation(string(result.Status), result.Duration)
	}

	if err != nil {
		app.logger.Error("invocation failed", "execution", result.ExecutionID, "error", err)
		if app.callback != nil {
			_ = app.callback.OnError(ctx, err)
		}
		return result, errors.Wrap(err, "invoke: node failed")
	}

	app.logger.Info("invocation completed",
		"execution", result.ExecutionID, "items", len(items), "duration", result.Duration)
	if app.callback != nil {
		if cbErr := app.callback.OnComplete(ctx, result); cbErr != nil {
			return result, errors.Wrap(cbErr, "invoke: callback OnComplete failed")
		}
	}
	return result, nil
}

// Start invokes the node for each batch from the Listener. It blocks until
// the context is done or the listener reports io.EOF.
func (app *App) Start(ctx context.Context) error {
	if app.listener == nil {
		return errors.New("start called, but no Listener is configured")
	}

	for {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context is done")

		default:
			items, err := app.listener.WaitForEvent(ctx)
			if errors.Is(err, io.EOF) {
				app.logger.Info("listener drained")
				return nil
			}
			if err != nil {
				if ctx.Err() != nil {
					return errors.Wrap(ctx.Err(), "context is done")
				}
				app.logger.Warn("listener failed", "error", err)
				if app.callback != nil {
					_ = app.callback.OnError(ctx, err)
				}
				continue
			}

			// OnError has been called in Invoke
			_, _ = app.Invoke(ctx, items)
		}
	}
}

package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/notify"
	"github.com/goliatone/go-pluginform/pkg/render"
	"github.com/goliatone/go-pluginform/pkg/transport"
)

const (
	SavingMessage      = "Saving changes.."
	SaveFailedMessage  = "Unable to save changes. Please try again."
	SaveFailedDuration = 3 * time.Second
)

type observer struct {
	id uint64
	fn func(State)
}

// Controller owns the form state for one plugin endpoint.
type Controller struct {
	transport transport.Transport
	endpoint  transport.Endpoint
	notifier  notify.Sink
	logger    *slog.Logger

	mu          sync.Mutex
	state       State
	generation  uint64
	scope       context.Context
	cancel      context.CancelFunc
	initialized bool
	disposed    bool
	observers   []observer
	observerSeq uint64
}

// New constructs a controller bound to endpoint. The controller takes
// ownership of t and closes it on Dispose when it implements io.Closer.
func New(t transport.Transport, endpoint transport.Endpoint, options ...Option) (*Controller, error) {
	if t == nil {
		return nil, errors.New("form: transport is required")
	}
	if err := endpoint.Validate(); err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	c := &Controller{
		transport: t,
		endpoint:  endpoint,
		notifier:  notify.Discard,
		logger:    slog.Default(),
		state:     ApplyUpdate(State{Lifecycle: LifecycleLoading}),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = c.logger.With("component", "form", "endpoint", endpoint.String())
	return c, nil
}

// Endpoint returns the bound endpoint.
func (c *Controller) Endpoint() transport.Endpoint {
	return c.endpoint
}

// Initialize acquires the request scope and loads the schema. Requests made
// through the controller are cancelled when ctx is done or on Dispose.
func (c *Controller) Initialize(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	switch {
	case c.disposed:
		c.mu.Unlock()
		return ErrDisposed
	case c.initialized:
		c.mu.Unlock()
		return ErrAlreadyInitialized
	}
	c.initialized = true
	c.scope, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	return c.FetchSchema(ctx)
}

// Dispose cancels in-flight requests, releases the transport and turns any
// pending completion into a no-op. Calling it again does nothing.
func (c *Controller) Dispose() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil
	}
	c.disposed = true
	c.generation++
	cancel := c.cancel
	c.observers = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if closer, ok := c.transport.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("form: close transport: %w", err)
		}
	}
	c.logger.Debug("controller disposed")
	return nil
}

// FetchSchema loads the field schema and current values. A failure leaves the
// form without fields and in the error lifecycle.
func (c *Controller) FetchSchema(ctx context.Context) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.state.Lifecycle == LifecycleSaving {
		c.mu.Unlock()
		return ErrSaveInFlight
	}
	c.generation++
	gen := c.generation
	c.state = ApplyUpdate(c.state, WithLifecycle(LifecycleLoading))
	reqCtx, release := c.requestContext(ctx)
	c.mu.Unlock()
	defer release()
	c.notifyObservers()

	fields, err := c.transport.Fetch(reqCtx, c.endpoint)

	c.mu.Lock()
	if stale := c.staleLocked(gen); stale != nil {
		c.mu.Unlock()
		c.logger.Debug("discarded fetch response", "error", stale)
		return stale
	}
	if err != nil {
		loadErr := fmt.Errorf("%w: %w", ErrLoad, err)
		c.state = ApplyUpdate(c.state, WithLoadError(loadErr), WithLifecycle(LifecycleError))
		c.mu.Unlock()
		c.logger.Warn("fetch failed", "error", err)
		c.notifyObservers()
		return loadErr
	}
	c.state = ApplyUpdate(c.state,
		WithConfig(fields),
		WithoutErrors(),
		WithLifecycle(LifecycleReady),
		func(s *State) { s.LoadErr = nil },
	)
	count := len(c.state.Fields)
	c.mu.Unlock()
	c.logger.Debug("fetched schema", "fields", count)
	c.notifyObservers()
	return nil
}

// HandleFieldChange records a new value for name and clears its error. It is
// allowed in every lifecycle once the schema is loaded.
func (c *Controller) HandleFieldChange(name string, value any) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if !c.state.Values.Has(name) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	shaped, err := model.Normalize(value)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: field %q: %w", ErrInvalidValue, name, err)
	}
	c.state = ApplyUpdate(c.state, WithValue(name, shaped))
	c.mu.Unlock()
	c.notifyObservers()
	return nil
}

// Submit sends every current value to the server. A submit while another is
// in flight is dropped with ErrSaveInFlight. Field errors from a rejected save
// land in State.Errors and the returned error wraps ErrSave.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.disposed:
		c.mu.Unlock()
		return ErrDisposed
	case c.state.Lifecycle == LifecycleSaving:
		c.mu.Unlock()
		c.logger.Debug("submit dropped, save in flight")
		return ErrSaveInFlight
	case !c.state.Loaded() || c.state.Lifecycle == LifecycleLoading:
		c.mu.Unlock()
		return ErrNotLoaded
	}
	c.generation++
	gen := c.generation
	c.state = ApplyUpdate(c.state, WithLifecycle(LifecycleSaving))
	payload := c.state.Values.Clone()
	fields := append(c.state.Fields[:0:0], c.state.Fields...)
	reqCtx, release := c.requestContext(ctx)
	c.mu.Unlock()
	defer release()
	c.notifyObservers()

	token := c.notifier.Emit(notify.Message{Text: SavingMessage, Kind: notify.KindLoading})
	defer c.notifier.Dismiss(token)

	result, err := c.transport.Save(reqCtx, c.endpoint, payload)

	c.mu.Lock()
	if stale := c.staleLocked(gen); stale != nil {
		c.mu.Unlock()
		c.logger.Debug("discarded save response", "error", stale)
		return stale
	}
	if err != nil {
		mapping := render.MapErrorPayload(fields, transport.FieldErrorsOf(err))
		c.state = ApplyUpdate(c.state,
			WithErrors(mapping.Fields, mapping.Form),
			WithLifecycle(LifecycleError),
		)
		c.mu.Unlock()
		c.logger.Warn("save failed", "error", err, "field_errors", len(mapping.Fields))
		c.notifyObservers()
		c.notifier.Emit(notify.Message{Text: SaveFailedMessage, Kind: notify.KindError, Duration: SaveFailedDuration})
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	c.state = ApplyUpdate(c.state,
		WithConfig(result),
		WithoutErrors(),
		WithLifecycle(LifecycleReady),
	)
	c.mu.Unlock()
	c.logger.Debug("saved configuration", "fields", len(payload))
	c.notifyObservers()
	return nil
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// CanSubmit applies the submit gate to the current state.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CanSubmit(c.state)
}

// View returns the render model for the current state.
func (c *Controller) View() render.View {
	return ViewOf(c.Snapshot())
}

// OnChange registers fn to be called with a snapshot after every state
// transition. The returned function removes the observer.
func (c *Controller) OnChange(fn func(State)) func() {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextObserver()
	c.observers = append(c.observers, observer{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, obs := range c.observers {
			if obs.id == id {
				c.observers = append(c.observers[:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

// ViewOf converts a state into the render model.
func ViewOf(s State) render.View {
	return render.View{
		Fields:         s.Fields,
		Values:         s.Values,
		Errors:         s.Errors,
		FormErrors:     s.FormErrors,
		SubmitDisabled: !CanSubmit(s),
		Saving:         s.Lifecycle == LifecycleSaving,
	}
}

func (c *Controller) nextObserver() uint64 {
	c.observerSeq++
	return c.observerSeq
}

func (c *Controller) notifyObservers() {
	c.mu.Lock()
	if len(c.observers) == 0 {
		c.mu.Unlock()
		return
	}
	observers := append([]observer(nil), c.observers...)
	snapshot := c.state.Clone()
	c.mu.Unlock()

	for _, obs := range observers {
		obs.fn(snapshot.Clone())
	}
}

// staleLocked reports why a completion for gen must be discarded.
func (c *Controller) staleLocked(gen uint64) error {
	if c.disposed {
		return ErrDisposed
	}
	if gen != c.generation {
		return ErrStale
	}
	return nil
}

// requestContext derives a per-request context that also ends when the
// controller scope is cancelled. Must be called with c.mu held.
func (c *Controller) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	if c.scope == nil {
		return reqCtx, cancel
	}
	stop := context.AfterFunc(c.scope, cancel)
	return reqCtx, func() {
		stop()
		cancel()
	}
}

package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/transport"
)

// Result is one scripted transport response.
type Result struct {
	Config []model.ConfigField
	Err    error
	// Gate, when set, blocks the call until it is closed or the request
	// context ends.
	Gate chan struct{}
}

// ScriptedTransport replays queued results and records every call. When a
// queue is empty the last result is reused.
type ScriptedTransport struct {
	mu      sync.Mutex
	fetches []Result
	saves   []Result
	saved   []model.Values
	fetched int
	closed  int
	started chan string
}

// NewScriptedTransport builds a transport with no scripted results.
func NewScriptedTransport() *ScriptedTransport {
	return &ScriptedTransport{started: make(chan string, 64)}
}

// OnFetch queues fetch results.
func (s *ScriptedTransport) OnFetch(results ...Result) *ScriptedTransport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches = append(s.fetches, results...)
	return s
}

// OnSave queues save results.
func (s *ScriptedTransport) OnSave(results ...Result) *ScriptedTransport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, results...)
	return s
}

// Started receives "fetch" or "save" as each call begins.
func (s *ScriptedTransport) Started() <-chan string {
	return s.started
}

func (s *ScriptedTransport) Fetch(ctx context.Context, _ transport.Endpoint) ([]model.ConfigField, error) {
	s.mu.Lock()
	s.fetched++
	result := next(&s.fetches)
	s.mu.Unlock()
	return s.wait(ctx, "fetch", result)
}

func (s *ScriptedTransport) Save(ctx context.Context, _ transport.Endpoint, values model.Values) ([]model.ConfigField, error) {
	s.mu.Lock()
	s.saved = append(s.saved, values.Clone())
	result := next(&s.saves)
	s.mu.Unlock()
	return s.wait(ctx, "save", result)
}

// Close counts releases so tests can assert ownership.
func (s *ScriptedTransport) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// Saved returns the payload of every save call.
func (s *ScriptedTransport) Saved() []model.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Values(nil), s.saved...)
}

// FetchCount returns the number of fetch calls.
func (s *ScriptedTransport) FetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetched
}

// CloseCount returns the number of Close calls.
func (s *ScriptedTransport) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *ScriptedTransport) wait(ctx context.Context, kind string, result Result) ([]model.ConfigField, error) {
	select {
	case s.started <- kind:
	default:
	}
	if result.Gate != nil {
		select {
		case <-result.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if result.Err != nil {
		return nil, result.Err
	}
	return cloneFields(result.Config), nil
}

func next(queue *[]Result) Result {
	if len(*queue) == 0 {
		return Result{}
	}
	result := (*queue)[0]
	if len(*queue) > 1 {
		*queue = (*queue)[1:]
	}
	return result
}

func cloneFields(fields []model.ConfigField) []model.ConfigField {
	if fields == nil {
		return nil
	}
	out := make([]model.ConfigField, len(fields))
	copy(out, fields)
	return out
}

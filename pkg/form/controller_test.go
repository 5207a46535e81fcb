package form_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pluginform/pkg/form"
	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/notify"
	"github.com/goliatone/go-pluginform/pkg/testsupport"
	"github.com/goliatone/go-pluginform/pkg/transport"
)

var endpoint = transport.Endpoint{Organization: "acme", Project: "web", Plugin: "tracker"}

func newController(t *testing.T, tr transport.Transport, opts ...form.Option) *form.Controller {
	t.Helper()
	ctrl, err := form.New(tr, endpoint, opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	t.Cleanup(func() { _ = ctrl.Dispose() })
	return ctrl
}

func initialized(t *testing.T, tr *testsupport.ScriptedTransport, opts ...form.Option) *form.Controller {
	t.Helper()
	ctrl := newController(t, tr, opts...)
	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return ctrl
}

func withValue(fields []model.ConfigField, name string, value any) []model.ConfigField {
	out := append([]model.ConfigField(nil), fields...)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
		}
	}
	return out
}

func waitStarted(t *testing.T, tr *testsupport.ScriptedTransport, kind string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got := <-tr.Started():
			if got == kind {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s to start", kind)
		}
	}
}

func TestNewValidatesArguments(t *testing.T) {
	if _, err := form.New(nil, endpoint); err == nil {
		t.Fatalf("expected error for missing transport")
	}
	if _, err := form.New(testsupport.NewScriptedTransport(), transport.Endpoint{Organization: "acme"}); err == nil {
		t.Fatalf("expected error for incomplete endpoint")
	}
}

func TestInitializeLoadsSchema(t *testing.T) {
	tr := testsupport.NewScriptedTransport().OnFetch(testsupport.Result{Config: testsupport.SampleConfig(t)})
	ctrl := initialized(t, tr)

	state := ctrl.Snapshot()
	if state.Lifecycle != form.LifecycleReady {
		t.Fatalf("lifecycle = %q, want ready", state.Lifecycle)
	}
	if len(state.Fields) != 7 {
		t.Fatalf("expected 7 fields, got %d", len(state.Fields))
	}
	want := model.Values{
		"api_key":     nil,
		"url":         "https://tracker.example.com",
		"project_key": "OPS",
		"notes":       nil,
		"priority":    "normal",
		"assignee":    nil,
		"region":      "eu-west",
	}
	if diff := cmp.Diff(want, state.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(state.Values, state.Initial); diff != "" {
		t.Fatalf("initial should mirror values (-values +initial):\n%s", diff)
	}
	if ctrl.CanSubmit() {
		t.Fatalf("clean form must not be submittable")
	}
	if err := ctrl.Initialize(context.Background()); !errors.Is(err, form.ErrAlreadyInitialized) {
		t.Fatalf("second initialize: got %v", err)
	}
}

func TestFetchFailureIsTerminal(t *testing.T) {
	boom := errors.New("connection refused")
	tr := testsupport.NewScriptedTransport().OnFetch(testsupport.Result{Err: boom})
	ctrl := newController(t, tr)

	err := ctrl.Initialize(context.Background())
	if !errors.Is(err, form.ErrLoad) || !errors.Is(err, boom) {
		t.Fatalf("expected load error wrapping transport error, got %v", err)
	}
	state := ctrl.Snapshot()
	if state.Lifecycle != form.LifecycleError || state.LoadErr == nil {
		t.Fatalf("expected error lifecycle with LoadErr, got %q %v", state.Lifecycle, state.LoadErr)
	}
	if state.Loaded() {
		t.Fatalf("failed load must not expose fields")
	}
	if err := ctrl.Submit(context.Background()); !errors.Is(err, form.ErrNotLoaded) {
		t.Fatalf("submit after failed load: got %v", err)
	}
	if err := ctrl.HandleFieldChange("url", "x"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("change after failed load: got %v", err)
	}
	if tr.FetchCount() != 1 {
		t.Fatalf("fetch must not be retried, got %d calls", tr.FetchCount())
	}
}

func TestSubmitBeforeLoad(t *testing.T) {
	ctrl := newController(t, testsupport.NewScriptedTransport())
	if err := ctrl.Submit(context.Background()); !errors.Is(err, form.ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestHandleFieldChange(t *testing.T) {
	tr := testsupport.NewScriptedTransport().OnFetch(testsupport.Result{Config: testsupport.SampleConfig(t)})
	ctrl := initialized(t, tr)

	if err := ctrl.HandleFieldChange("ghost", "x"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := ctrl.HandleFieldChange("project_key", "INFRA"); err != nil {
		t.Fatalf("change: %v", err)
	}
	state := ctrl.Snapshot()
	if state.Values["project_key"] != "INFRA" {
		t.Fatalf("value not written: %v", state.Values["project_key"])
	}
	if state.Initial["project_key"] != "OPS" {
		t.Fatalf("initial must not change: %v", state.Initial["project_key"])
	}
	if !ctrl.CanSubmit() {
		t.Fatalf("dirty form should be submittable")
	}

	if err := ctrl.HandleFieldChange("project_key", "OPS"); err != nil {
		t.Fatalf("revert: %v", err)
	}
	if ctrl.CanSubmit() {
		t.Fatalf("reverted form should not be submittable")
	}
}

func TestSubmitSuccess(t *testing.T) {
	sample := testsupport.SampleConfig(t)
	saved := withValue(sample, "project_key", "INFRA")
	tr := testsupport.NewScriptedTransport().
		OnFetch(testsupport.Result{Config: sample}).
		OnSave(testsupport.Result{Config: saved})
	sink := testsupport.NewRecordingSink()
	ctrl := initialized(t, tr, form.WithNotifier(sink))

	if err := ctrl.HandleFieldChange("project_key", "INFRA"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	payloads := tr.Saved()
	if len(payloads) != 1 || payloads[0]["project_key"] != "INFRA" {
		t.Fatalf("unexpected save payloads: %v", payloads)
	}
	if len(payloads[0]) != 7 {
		t.Fatalf("save must send every field, got %d", len(payloads[0]))
	}

	state := ctrl.Snapshot()
	if state.Lifecycle != form.LifecycleReady {
		t.Fatalf("lifecycle = %q, want ready", state.Lifecycle)
	}
	if state.Initial["project_key"] != "INFRA" || state.Values["project_key"] != "INFRA" {
		t.Fatalf("response values not applied: %v / %v", state.Values, state.Initial)
	}
	if ctrl.CanSubmit() {
		t.Fatalf("form should be clean after save")
	}

	want := []notify.Message{{Text: form.SavingMessage, Kind: notify.KindLoading}}
	if diff := cmp.Diff(want, sink.Messages()); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
	if sink.Dismissals(0) != 1 {
		t.Fatalf("saving notification dismissed %d times, want 1", sink.Dismissals(0))
	}
}

func TestSubmitFailureMapsErrors(t *testing.T) {
	sample := testsupport.SampleConfig(t)
	rejection := &transport.StatusError{
		Code: http.StatusBadRequest,
		FieldErrors: map[string][]string{
			"api_key": {"Invalid key"},
			"url":     {"Unreachable"},
			"__all__": {"Check the highlighted fields"},
		},
	}
	tr := testsupport.NewScriptedTransport().
		OnFetch(testsupport.Result{Config: sample}).
		OnSave(testsupport.Result{Err: rejection})
	sink := testsupport.NewRecordingSink()
	ctrl := initialized(t, tr, form.WithNotifier(sink))

	if err := ctrl.HandleFieldChange("api_key", "bad"); err != nil {
		t.Fatalf("change: %v", err)
	}
	err := ctrl.Submit(context.Background())
	if !errors.Is(err, form.ErrSave) {
		t.Fatalf("expected ErrSave, got %v", err)
	}
	var statusErr *transport.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusBadRequest {
		t.Fatalf("expected wrapped status error, got %v", err)
	}

	state := ctrl.Snapshot()
	if state.Lifecycle != form.LifecycleError {
		t.Fatalf("lifecycle = %q, want error", state.Lifecycle)
	}
	wantErrors := map[string]string{"api_key": "Invalid key", "url": "Unreachable"}
	if diff := cmp.Diff(wantErrors, state.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Check the highlighted fields"}, state.FormErrors); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if state.Values["api_key"] != "bad" {
		t.Fatalf("edits must survive a failed save, got %v", state.Values["api_key"])
	}
	if !ctrl.CanSubmit() {
		t.Fatalf("form should be submittable again after a failure")
	}

	wantMsgs := []notify.Message{
		{Text: form.SavingMessage, Kind: notify.KindLoading},
		{Text: form.SaveFailedMessage, Kind: notify.KindError, Duration: 3 * time.Second},
	}
	if diff := cmp.Diff(wantMsgs, sink.Messages()); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
	if sink.Dismissals(0) != 1 || sink.TotalDismissals() != 1 {
		t.Fatalf("expected exactly one dismissal of the saving message, got %d/%d", sink.Dismissals(0), sink.TotalDismissals())
	}

	if err := ctrl.HandleFieldChange("api_key", "good"); err != nil {
		t.Fatalf("change: %v", err)
	}
	state = ctrl.Snapshot()
	if _, ok := state.Errors["api_key"]; ok {
		t.Fatalf("api_key error should be cleared after edit")
	}
	if state.Errors["url"] != "Unreachable" {
		t.Fatalf("other field errors must be kept, got %v", state.Errors)
	}
}

func TestSubmitFailureWithoutFieldErrors(t *testing.T) {
	tr := testsupport.NewScriptedTransport().
		OnFetch(testsupport.Result{Config: testsupport.SampleConfig(t)}).
		OnSave(testsupport.Result{Err: errors.New("timeout")})
	ctrl := initialized(t, tr)

	if err := ctrl.Submit(context.Background()); !errors.Is(err, form.ErrSave) {
		t.Fatalf("expected ErrSave, got %v", err)
	}
	state := ctrl.Snapshot()
	if len(state.Errors) != 0 || len(state.FormErrors) != 0 {
		t.Fatalf("expected no mapped errors, got %v %v", state.Errors, state.FormErrors)
	}
}

func TestConcurrentSubmitSavesOnce(t *testing.T) {
	gate := make(chan struct{})
	sample := testsupport.SampleConfig(t)
	tr := testsupport.NewScriptedTransport().
		OnFetch(testsupport.Result{Config: sample}).
		OnSave(testsupport.Result{Config: sample, Gate: gate})
	sink := testsupport.NewRecordingSink()
	ctrl := initialized(t, tr, form.WithNotifier(sink))
	if err := ctrl.HandleFieldChange("notes", "hello"); err != nil {
		t.Fatalf("change: %v", err)
	}

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = ctrl.Submit(context.Background())
	}()
	waitStarted(t, tr, "save")

	if ctrl.CanSubmit() {
		t.Fatalf("submit must be disabled while saving")
	}
	if err := ctrl.Submit(context.Background()); !errors.Is(err, form.ErrSaveInFlight) {
		t.Fatalf("second submit: got %v", err)
	}
	if err := ctrl.FetchSchema(context.Background()); !errors.Is(err, form.ErrSaveInFlight) {
		t.Fatalf("fetch during save: got %v", err)
	}
	if err := ctrl.HandleFieldChange("notes", "still editable"); err != nil {
		t.Fatalf("edits during save should be accepted: %v", err)
	}

	close(gate)
	wg.Wait()
	if firstErr != nil {
		t.Fatalf("first submit: %v", firstErr)
	}
	if n := len(tr.Saved()); n != 1 {
		t.Fatalf("expected exactly one save, got %d", n)
	}
	if sink.TotalDismissals() != 1 {
		t.Fatalf("expected one dismissal, got %d", sink.TotalDismissals())
	}
}

func TestDisposeDiscardsInFlightSave(t *testing.T) {
	gate := make(chan struct{})
	sample := testsupport.SampleConfig(t)
	tr := testsupport.NewScriptedTransport().
		OnFetch(testsupport.Result{Config: sample}).
		OnSave(testsupport.Result{Config: withValue(sample, "project_key", "LATE"), Gate: gate})
	sink := testsupport.NewRecordingSink()
	ctrl := initialized(t, tr, form.WithNotifier(sink))

	done := make(chan error, 1)
	go func() { done <- ctrl.Submit(context.Background()) }()
	waitStarted(t, tr, "save")

	if err := ctrl.Dispose(); err != nil {
		t.Fatalf("dispose: %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, form.ErrDisposed) {
			t.Fatalf("expected ErrDisposed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("in-flight save was not cancelled by dispose")
	}
	close(gate)

	state := ctrl.Snapshot()
	if state.Lifecycle != form.LifecycleSaving {
		t.Fatalf("disposed controller state must not change, got %q", state.Lifecycle)
	}
	if state.Values["project_key"] != "OPS" {
		t.Fatalf("late response leaked into state: %v", state.Values["project_key"])
	}
	if tr.CloseCount() != 1 {
		t.Fatalf("transport closed %d times, want 1", tr.CloseCount())
	}
	if sink.Dismissals(0) != 1 {
		t.Fatalf("saving notification dismissed %d times, want 1", sink.Dismissals(0))
	}

	if err := ctrl.Dispose(); err != nil {
		t.Fatalf("second dispose: %v", err)
	}
	if tr.CloseCount() != 1 {
		t.Fatalf("dispose must be idempotent")
	}
	if err := ctrl.HandleFieldChange("url", "x"); !errors.Is(err, form.ErrDisposed) {
		t.Fatalf("change after dispose: got %v", err)
	}
	if err := ctrl.Submit(context.Background()); !errors.Is(err, form.ErrDisposed) {
		t.Fatalf("submit after dispose: got %v", err)
	}
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	sample := testsupport.SampleConfig(t)
	tr := testsupport.NewScriptedTransport().OnFetch(
		testsupport.Result{Config: withValue(sample, "project_key", "OLD"), Gate: gate},
		testsupport.Result{Config: withValue(sample, "project_key", "NEW")},
	)
	ctrl := newController(t, tr)

	done := make(chan error, 1)
	go func() { done <- ctrl.FetchSchema(context.Background()) }()
	waitStarted(t, tr, "fetch")

	if err := ctrl.FetchSchema(context.Background()); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	close(gate)
	if err := <-done; !errors.Is(err, form.ErrStale) {
		t.Fatalf("expected ErrStale for superseded fetch, got %v", err)
	}
	if got := ctrl.Snapshot().Values["project_key"]; got != "NEW" {
		t.Fatalf("stale fetch overwrote state: %v", got)
	}
}

func TestChangesMergePatch(t *testing.T) {
	tr := testsupport.NewScriptedTransport().OnFetch(testsupport.Result{Config: testsupport.SampleConfig(t)})
	ctrl := initialized(t, tr)

	patch, err := ctrl.Changes()
	if err != nil {
		t.Fatalf("changes: %v", err)
	}
	if string(patch) != "{}" {
		t.Fatalf("clean form patch = %s, want {}", patch)
	}

	_ = ctrl.HandleFieldChange("project_key", "INFRA")
	_ = ctrl.HandleFieldChange("assignee", "alice")
	patch, err = ctrl.Changes()
	if err != nil {
		t.Fatalf("changes: %v", err)
	}
	if want := `{"assignee":"alice","project_key":"INFRA"}`; string(patch) != want {
		t.Fatalf("patch = %s, want %s", patch, want)
	}

	want := []form.Change{
		{Name: "project_key", Before: "OPS", After: "INFRA"},
		{Name: "assignee", Before: nil, After: "alice"},
	}
	if diff := cmp.Diff(want, ctrl.Pending()); diff != "" {
		t.Fatalf("pending mismatch (-want +got):\n%s", diff)
	}
}

func TestObservers(t *testing.T) {
	tr := testsupport.NewScriptedTransport().OnFetch(testsupport.Result{Config: testsupport.SampleConfig(t)})
	var seen []form.Lifecycle
	ctrl := initialized(t, tr, form.WithObserver(func(s form.State) {
		seen = append(seen, s.Lifecycle)
	}))
	if diff := cmp.Diff([]form.Lifecycle{form.LifecycleLoading, form.LifecycleReady}, seen); diff != "" {
		t.Fatalf("observed lifecycles mismatch (-want +got):\n%s", diff)
	}

	calls := 0
	unsubscribe := ctrl.OnChange(func(form.State) { calls++ })
	_ = ctrl.HandleFieldChange("notes", "a")
	unsubscribe()
	_ = ctrl.HandleFieldChange("notes", "b")
	if calls != 1 {
		t.Fatalf("expected 1 call before unsubscribe, got %d", calls)
	}
}

func TestViewReflectsState(t *testing.T) {
	tr := testsupport.NewScriptedTransport().OnFetch(testsupport.Result{Config: testsupport.SampleConfig(t)})
	ctrl := initialized(t, tr)

	view := ctrl.View()
	if !view.SubmitDisabled || view.Saving {
		t.Fatalf("clean view should have submit disabled: %+v", view)
	}
	_ = ctrl.HandleFieldChange("notes", "x")
	if ctrl.View().SubmitDisabled {
		t.Fatalf("dirty view should enable submit")
	}
}

func TestTypedValuesStayCleanAfterSave(t *testing.T) {
	mem := transport.NewMemory()
	mem.Put(endpoint, []model.ConfigField{
		{FieldSpec: model.FieldSpec{Name: "tags", Label: "Tags", Type: model.FieldTypeText}, Value: []any{}},
		{FieldSpec: model.FieldSpec{Name: "labels", Label: "Labels", Type: model.FieldTypeText}},
	})
	ctrl := newController(t, mem)
	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	tags := []int{1, 2}
	if err := ctrl.HandleFieldChange("tags", tags); err != nil {
		t.Fatalf("change tags: %v", err)
	}
	if err := ctrl.HandleFieldChange("labels", map[string]string{"team": "ops"}); err != nil {
		t.Fatalf("change labels: %v", err)
	}
	tags[0] = 99

	want := model.Values{
		"tags":   []any{float64(1), float64(2)},
		"labels": map[string]any{"team": "ops"},
	}
	if diff := cmp.Diff(want, ctrl.Snapshot().Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if !ctrl.CanSubmit() {
		t.Fatalf("edited form should be submittable")
	}

	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	state := ctrl.Snapshot()
	if ctrl.CanSubmit() || !model.Equal(state.Values, state.Initial) {
		t.Fatalf("form should be clean after save: values %v initial %v", state.Values, state.Initial)
	}

	state.Values["tags"].([]any)[0] = "changed"
	if diff := cmp.Diff(want["tags"], ctrl.Snapshot().Initial["tags"]); diff != "" {
		t.Fatalf("initial aliased (-want +got):\n%s", diff)
	}
}

func TestHandleFieldChangeRejectsUnencodableValue(t *testing.T) {
	tr := testsupport.NewScriptedTransport().OnFetch(testsupport.Result{Config: testsupport.SampleConfig(t)})
	ctrl := initialized(t, tr)

	err := ctrl.HandleFieldChange("project_key", func() {})
	if !errors.Is(err, form.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if got := ctrl.Snapshot().Values["project_key"]; got != "OPS" {
		t.Fatalf("value changed to %v", got)
	}
}

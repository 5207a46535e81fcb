package form

import "errors"

var (
	// ErrLoad wraps a failed schema fetch. It is terminal for the controller.
	ErrLoad = errors.New("form: unable to load plugin configuration")
	// ErrSave wraps a failed submit. The form stays editable.
	ErrSave = errors.New("form: unable to save plugin configuration")

	ErrUnknownField       = errors.New("form: unknown field")
	ErrInvalidValue       = errors.New("form: value is not JSON encodable")
	ErrSaveInFlight       = errors.New("form: save already in flight")
	ErrNotLoaded          = errors.New("form: schema not loaded")
	ErrDisposed           = errors.New("form: controller disposed")
	ErrAlreadyInitialized = errors.New("form: controller already initialized")
	// ErrStale is returned when a response was discarded because a newer
	// request superseded it.
	ErrStale = errors.New("form: response superseded by a newer request")
)

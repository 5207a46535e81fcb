// Package form hosts the dynamic form controller: it loads a plugin's field
// schema through a transport.Transport, tracks edits against the last loaded
// snapshot, and submits the full value map on demand.
//
// All state changes go through ApplyUpdate so the invariants live in one
// place:
//
//   - Values only holds names present in Fields.
//   - Initial is a deep copy and never aliases Values.
//   - Changing a field drops that field's error and nothing else.
//   - CanSubmit is false while saving or when Values equals Initial.
//
// The controller is safe for concurrent use. Its mutex is never held across a
// network call; instead every request records a generation number and its
// completion is discarded when a newer request was issued or the controller
// was disposed in the meantime.
package form

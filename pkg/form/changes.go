package form

import (
	"fmt"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/goliatone/go-pluginform/pkg/model"
)

// Change describes one edited field.
type Change struct {
	Name   string
	Before any
	After  any
}

// Changes returns an RFC 7386 merge patch that turns the loaded snapshot into
// the current values. A clean form yields {}.
func (c *Controller) Changes() ([]byte, error) {
	s := c.Snapshot()
	return MergePatch(s.Initial, s.Values)
}

// Pending lists edited fields in schema order.
func (c *Controller) Pending() []Change {
	return PendingChanges(c.Snapshot())
}

// MergePatch computes the merge patch from before to after.
func MergePatch(before, after model.Values) ([]byte, error) {
	original, err := sonic.Marshal(nonNil(before))
	if err != nil {
		return nil, fmt.Errorf("form: encode initial values: %w", err)
	}
	modified, err := sonic.Marshal(nonNil(after))
	if err != nil {
		return nil, fmt.Errorf("form: encode values: %w", err)
	}
	patch, err := jsonpatch.CreateMergePatch(original, modified)
	if err != nil {
		return nil, fmt.Errorf("form: create merge patch: %w", err)
	}
	return patch, nil
}

// PendingChanges lists the fields whose value differs from the snapshot, in
// schema order.
func PendingChanges(s State) []Change {
	var out []Change
	for _, field := range s.Fields {
		after, ok := s.Values[field.Name]
		if !ok {
			continue
		}
		before := s.Initial[field.Name]
		if model.ValueEqual(before, after) {
			continue
		}
		out = append(out, Change{Name: field.Name, Before: before, After: after})
	}
	return out
}

func nonNil(values model.Values) model.Values {
	if values == nil {
		return model.Values{}
	}
	return values
}

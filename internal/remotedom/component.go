// Package remotedom implements the remote-DOM renderer (spec §4.C):
// component tree serialization, reconciliation, and update dispatch. No
// browser DOM exists on this side of the bridge, so "rendering" produces a
// RenderedNode tree instead of calling document.createElement — the
// server-side analogue of embedding and extracting an artifact rather than
// running one in-process.
package remotedom

import (
	"encoding/json"
	"fmt"
)

// RemoteDomComponent is one node of a serialized component tree (spec §3).
// Children is either a list of child components or, for leaf text nodes, a
// single string — IsText discriminates which.
type RemoteDomComponent struct {
	ID       string
	Type     string
	Props    map[string]any
	Children []RemoteDomComponent
	Text     string
	IsText   bool
	Meta     map[string]any
}

type wireComponent struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Props    map[string]any  `json:"props"`
	Children json.RawMessage `json:"children,omitempty"`
	Meta     map[string]any  `json:"meta,omitempty"`
}

// MarshalJSON encodes children as either an array or a string, matching
// the wire shape spec §3 describes.
func (c RemoteDomComponent) MarshalJSON() ([]byte, error) {
	w := wireComponent{ID: c.ID, Type: c.Type, Props: c.Props, Meta: c.Meta}
	var err error
	if c.IsText {
		w.Children, err = json.Marshal(c.Text)
	} else if c.Children == nil {
		w.Children = json.RawMessage(`[]`)
	} else {
		w.Children, err = json.Marshal(c.Children)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a component, accepting either array or string
// children.
func (c *RemoteDomComponent) UnmarshalJSON(data []byte) error {
	var w wireComponent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.ID = w.ID
	c.Type = w.Type
	c.Props = w.Props
	c.Meta = w.Meta

	if len(w.Children) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(w.Children, &text); err == nil {
		c.IsText = true
		c.Text = text
		return nil
	}

	var children []RemoteDomComponent
	if err := json.Unmarshal(w.Children, &children); err != nil {
		return fmt.Errorf("remotedom: children must be an array or a string: %w", err)
	}
	c.Children = children
	return nil
}

// ErrCyclicTree is returned by Deserialize when a component id appears
// more than once within a tree.
type ErrCyclicTree struct {
	ID string
}

func (e *ErrCyclicTree) Error() string {
	return fmt.Sprintf("remotedom: duplicate component id %q (cyclic or malformed tree)", e.ID)
}

// ErrMissingField is returned by Deserialize when a component node omits
// one of the four fields spec §4.C requires every node to carry.
type ErrMissingField struct {
	Field string
}

func (e *ErrMissingField) Error() string {
	return fmt.Sprintf("remotedom: component missing required field %q", e.Field)
}

var requiredComponentFields = []string{"id", "type", "props", "children"}

// validatePresence walks the raw wire form ahead of the typed unmarshal and
// rejects any node missing one of its required fields (spec §4.C:
// "Deserialization validates that every node has id, type, props,
// children; rejects malformed input").
func validatePresence(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("remotedom: invalid component tree: %w", err)
	}
	for _, field := range requiredComponentFields {
		if _, ok := raw[field]; !ok {
			return &ErrMissingField{Field: field}
		}
	}

	// A text-leaf node's "children" is a bare string; only array children
	// carry nested nodes to validate.
	var text string
	if err := json.Unmarshal(raw["children"], &text); err == nil {
		return nil
	}
	var children []json.RawMessage
	if err := json.Unmarshal(raw["children"], &children); err != nil {
		return fmt.Errorf("remotedom: children must be an array or a string: %w", err)
	}
	for _, child := range children {
		if err := validatePresence(child); err != nil {
			return err
		}
	}
	return nil
}

// Serialize encodes a component tree to its wire form.
func Serialize(root RemoteDomComponent) ([]byte, error) {
	return json.Marshal(root)
}

// Deserialize decodes a component tree, rejecting it if any node omits a
// required field or any id repeats — component ids are asserted unique per
// tree (spec §3's invariant).
func Deserialize(data []byte) (RemoteDomComponent, error) {
	if err := validatePresence(data); err != nil {
		return RemoteDomComponent{}, err
	}
	var root RemoteDomComponent
	if err := json.Unmarshal(data, &root); err != nil {
		return RemoteDomComponent{}, fmt.Errorf("remotedom: invalid component tree: %w", err)
	}
	seen := make(map[string]bool)
	if err := checkUnique(root, seen); err != nil {
		return RemoteDomComponent{}, err
	}
	return root, nil
}

func checkUnique(c RemoteDomComponent, seen map[string]bool) error {
	if seen[c.ID] {
		return &ErrCyclicTree{ID: c.ID}
	}
	seen[c.ID] = true
	for _, child := range c.Children {
		if err := checkUnique(child, seen); err != nil {
			return err
		}
	}
	return nil
}

// Flatten collects every component in a tree keyed by id, depth-first.
func Flatten(root RemoteDomComponent) map[string]RemoteDomComponent {
	out := make(map[string]RemoteDomComponent)
	var walk func(RemoteDomComponent)
	walk = func(c RemoteDomComponent) {
		out[c.ID] = c
		for _, child := range c.Children {
			walk(child)
		}
	}
	walk(root)
	return out
}

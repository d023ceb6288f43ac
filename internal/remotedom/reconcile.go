package remotedom

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// DiffType tags one reconciliation operation.
type DiffType string

const (
	DiffInsert DiffType = "insert"
	DiffUpdate DiffType = "update"
	DiffRemove DiffType = "remove"
)

// Diff is one entry of a reconciliation result (spec §4.C).
type Diff struct {
	Type        DiffType
	ComponentID string
	Component   *RemoteDomComponent
	Path        []string
}

type pathed struct {
	component RemoteDomComponent
	path      []string
}

func flattenWithPath(root RemoteDomComponent) []pathed {
	var out []pathed
	var walk func(RemoteDomComponent, []string)
	walk = func(c RemoteDomComponent, path []string) {
		out = append(out, pathed{component: c, path: path})
		childPath := append(append([]string{}, path...), c.ID)
		for _, child := range c.Children {
			walk(child, childPath)
		}
	}
	walk(root, nil)
	return out
}

// ReconcileTree diffs two component forests (each a slice of sibling root
// components) keyed purely by id, per spec §4.C: reconciliation is
// position-independent. Every node in every tree, at any depth, is
// flattened before comparison, so the diff covers insertions, removals,
// and updates anywhere in the forest — not just at the top level.
func ReconcileTree(oldTrees, newTrees []RemoteDomComponent) []Diff {
	oldNodes := flattenForest(oldTrees)
	newNodes := flattenForest(newTrees)

	var diffs []Diff

	for id, n := range newNodes {
		old, existed := oldNodes[id]
		if !existed {
			comp := n.component
			diffs = append(diffs, Diff{Type: DiffInsert, ComponentID: id, Component: &comp, Path: n.path})
			continue
		}
		if !structurallyEqual(old.component, n.component) {
			comp := n.component
			diffs = append(diffs, Diff{Type: DiffUpdate, ComponentID: id, Component: &comp, Path: n.path})
		}
	}

	for id, o := range oldNodes {
		if _, stillPresent := newNodes[id]; !stillPresent {
			diffs = append(diffs, Diff{Type: DiffRemove, ComponentID: id, Path: o.path})
		}
	}

	return diffs
}

func flattenForest(trees []RemoteDomComponent) map[string]pathed {
	out := make(map[string]pathed)
	for _, root := range trees {
		for _, n := range flattenWithPath(root) {
			out[n.component.ID] = n
		}
	}
	return out
}

// structurallyEqual mirrors JSON.stringify(old) !== JSON.stringify(new)
// deep-equality: both nodes are marshalled, then it short-circuits on the
// node's own type/children-count before paying for the canonicalizing
// re-marshal — the structural-equality alternative
// to whole-subtree stringification the design note permits, with
// identical observable results as long as a real difference always
// produces a byte difference somewhere in the final compare.
func structurallyEqual(a, b RemoteDomComponent) bool {
	aBytes, errA := json.Marshal(a)
	bBytes, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}

	aQuick := gjson.GetManyBytes(aBytes, "type", "children.#")
	bQuick := gjson.GetManyBytes(bBytes, "type", "children.#")
	if aQuick[0].String() != bQuick[0].String() || aQuick[1].String() != bQuick[1].String() {
		return false
	}

	return canonicalize(aBytes) == canonicalize(bBytes)
}

// canonicalize re-marshals decoded JSON so key order never affects the
// byte-for-byte compare.
func canonicalize(raw []byte) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// ApplyDiffs applies a reconciliation result to a component map in place,
// returning the updated map. Used by tests to assert
// applyDiffs(old, reconcile(old, new)) ≡ new.
func ApplyDiffs(current map[string]RemoteDomComponent, diffs []Diff) map[string]RemoteDomComponent {
	out := make(map[string]RemoteDomComponent, len(current))
	for k, v := range current {
		out[k] = v
	}
	for _, d := range diffs {
		switch d.Type {
		case DiffInsert, DiffUpdate:
			if d.Component != nil {
				out[d.ComponentID] = *d.Component
			}
		case DiffRemove:
			delete(out, d.ComponentID)
		}
	}
	return out
}

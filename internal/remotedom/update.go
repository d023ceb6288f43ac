package remotedom

import (
	"fmt"
	"sync"

	"dario.cat/mergo"
)

// taggedObserver pairs a callback with a unique token so OnUpdate's
// unsubscribe closure can identify its own registration precisely — Go
// func values aren't comparable, so identity is tracked via the token.
type taggedObserver struct {
	token *byte
	fn    func(RemoteDomComponent)
}

// Renderer owns the live component map for one remote-DOM instance: the
// tree renderRemote materialized, update observers keyed by component id,
// and disposal (spec §4.C: "dispose(): subsequent calls short-circuit;
// pending update callbacks are dropped").
type Renderer struct {
	mu        sync.Mutex
	tree      map[string]RemoteDomComponent
	observers map[string][]taggedObserver
	disposed  bool
}

// NewRenderer seeds a Renderer from an already-deserialized root.
func NewRenderer(root RemoteDomComponent) *Renderer {
	return &Renderer{
		tree:      Flatten(root),
		observers: make(map[string][]taggedObserver),
	}
}

// OnUpdate registers cb to be called whenever UpdateComponent changes id.
// Returns an unsubscribe function. No-op after Dispose.
func (r *Renderer) OnUpdate(id string, cb func(RemoteDomComponent)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return func() {}
	}
	token := new(byte)
	r.observers[id] = append(r.observers[id], taggedObserver{token: token, fn: cb})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		cbs := r.observers[id]
		for i, o := range cbs {
			if o.token == token {
				r.observers[id] = append(cbs[:i:i], cbs[i+1:]...)
				return
			}
		}
	}
}

// UpdateComponent shallow-merges partial into the stored component's Props
// (new keys override existing ones), then notifies observers. A no-op
// after Dispose; returns an error if id isn't present in the tree.
func (r *Renderer) UpdateComponent(id string, partial map[string]any) error {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return nil
	}
	current, ok := r.tree[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("remotedom: no component with id %q", id)
	}

	merged := make(map[string]any, len(current.Props))
	for k, v := range current.Props {
		merged[k] = v
	}
	if err := mergo.Merge(&merged, partial, mergo.WithOverride); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("remotedom: merge update: %w", err)
	}
	current.Props = merged
	r.tree[id] = current

	cbs := append([]taggedObserver{}, r.observers[id]...)
	r.mu.Unlock()

	for _, o := range cbs {
		o.fn(current)
	}
	return nil
}

// Get returns the current state of a component by id.
func (r *Renderer) Get(id string) (RemoteDomComponent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.tree[id]
	return c, ok
}

// Clear drops every component and observer but leaves the renderer
// reusable — unlike Dispose, this is not terminal (spec §4.C: "clear() /
// dispose() — drops all components and element references; dispose is
// terminal"). A no-op after Dispose.
func (r *Renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	r.tree = make(map[string]RemoteDomComponent)
	r.observers = make(map[string][]taggedObserver)
}

// Dispose marks the renderer disposed. Subsequent UpdateComponent/OnUpdate
// calls short-circuit; all pending observers are dropped. Idempotent.
func (r *Renderer) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposed = true
	r.tree = make(map[string]RemoteDomComponent)
	r.observers = make(map[string][]taggedObserver)
}

// IsDisposed reports whether Dispose has been called.
func (r *Renderer) IsDisposed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disposed
}

package remotedom

import "testing"

func TestRenderer_UpdateComponentMergesProps(t *testing.T) {
	root := RemoteDomComponent{
		ID:   "root",
		Type: "div",
		Props: map[string]any{
			"className": "panel",
			"open":      true,
		},
	}
	r := NewRenderer(root)

	var observed RemoteDomComponent
	r.OnUpdate("root", func(c RemoteDomComponent) { observed = c })

	if err := r.UpdateComponent("root", map[string]any{"open": false}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, ok := r.Get("root")
	if !ok {
		t.Fatal("expected root to still be present")
	}
	if got.Props["open"] != false {
		t.Fatalf("expected open=false after merge, got %+v", got.Props)
	}
	if got.Props["className"] != "panel" {
		t.Fatalf("expected className preserved after shallow merge, got %+v", got.Props)
	}
	if observed.ID != "root" {
		t.Fatalf("expected observer to be notified, got %+v", observed)
	}
}

func TestRenderer_OnUpdateUnsubscribeRemovesOnlyItsOwnCallback(t *testing.T) {
	r := NewRenderer(RemoteDomComponent{ID: "root", Type: "div", Props: map[string]any{"a": 1}})

	var firstCalls, secondCalls int
	unsubFirst := r.OnUpdate("root", func(c RemoteDomComponent) { firstCalls++ })
	r.OnUpdate("root", func(c RemoteDomComponent) { secondCalls++ })

	unsubFirst()

	if err := r.UpdateComponent("root", map[string]any{"a": 2}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if firstCalls != 0 {
		t.Fatalf("expected unsubscribed callback not to fire, got %d calls", firstCalls)
	}
	if secondCalls != 1 {
		t.Fatalf("expected remaining callback to still fire once, got %d", secondCalls)
	}
}

func TestRenderer_UpdateUnknownComponentErrors(t *testing.T) {
	r := NewRenderer(RemoteDomComponent{ID: "root", Type: "div"})
	if err := r.UpdateComponent("missing", map[string]any{"x": 1}); err == nil {
		t.Fatal("expected an error for an unknown component id")
	}
}

func TestRenderer_ClearDropsComponentsButStaysUsable(t *testing.T) {
	r := NewRenderer(RemoteDomComponent{ID: "root", Type: "div", Props: map[string]any{"a": 1}})
	called := false
	r.OnUpdate("root", func(c RemoteDomComponent) { called = true })

	r.Clear()

	if _, ok := r.Get("root"); ok {
		t.Fatal("expected root to be gone after Clear")
	}
	if r.IsDisposed() {
		t.Fatal("Clear should not be terminal")
	}
	if err := r.UpdateComponent("root", map[string]any{"a": 2}); err == nil {
		t.Fatal("expected an error updating a component dropped by Clear")
	}
	if called {
		t.Fatal("expected the observer dropped by Clear not to fire")
	}

	// Unlike Dispose, OnUpdate still registers a real callback afterward.
	unsub := r.OnUpdate("root", func(c RemoteDomComponent) {})
	unsub()
}

func TestRenderer_ClearIsNoOpAfterDispose(t *testing.T) {
	r := NewRenderer(RemoteDomComponent{ID: "root", Type: "div"})
	r.Dispose()
	r.Clear() // must not panic or un-dispose the renderer
	if !r.IsDisposed() {
		t.Fatal("expected renderer to remain disposed after Clear")
	}
}

func TestRenderer_DisposeShortCircuits(t *testing.T) {
	r := NewRenderer(RemoteDomComponent{ID: "root", Type: "div", Props: map[string]any{"a": 1}})
	called := false
	r.OnUpdate("root", func(c RemoteDomComponent) { called = true })

	r.Dispose()
	if !r.IsDisposed() {
		t.Fatal("expected IsDisposed to be true")
	}

	if err := r.UpdateComponent("root", map[string]any{"a": 2}); err != nil {
		t.Fatalf("update after dispose should be a silent no-op, got error: %v", err)
	}
	if called {
		t.Fatal("expected no observer calls after dispose")
	}

	r.Dispose() // idempotent
}

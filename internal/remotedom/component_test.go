package remotedom

import "testing"

func TestSerializeDeserialize_RoundTrip(t *testing.T) {
	root := RemoteDomComponent{
		ID:   "root",
		Type: "div",
		Props: map[string]any{
			"className": "panel",
		},
		Children: []RemoteDomComponent{
			{ID: "text-1", IsText: true, Text: "hello"},
			{ID: "button-1", Type: "button", Props: map[string]any{"onClick": "handler"}},
		},
	}

	data, err := Serialize(root)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if got.ID != "root" || got.Type != "div" {
		t.Fatalf("unexpected root: %+v", got)
	}
	if len(got.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(got.Children))
	}
	if !got.Children[0].IsText || got.Children[0].Text != "hello" {
		t.Fatalf("expected text child, got %+v", got.Children[0])
	}
	if got.Children[1].ID != "button-1" {
		t.Fatalf("unexpected second child: %+v", got.Children[1])
	}
}

func TestDeserialize_RejectsDuplicateIDs(t *testing.T) {
	data := []byte(`{
		"id": "root", "type": "div", "props": {}, "children": [
			{"id": "dup", "type": "span", "props": {}, "children": []},
			{"id": "dup", "type": "span", "props": {}, "children": []}
		]
	}`)

	_, err := Deserialize(data)
	if err == nil {
		t.Fatal("expected an error for duplicate component ids")
	}
	if _, ok := err.(*ErrCyclicTree); !ok {
		t.Fatalf("expected ErrCyclicTree, got %T: %v", err, err)
	}
}

func TestDeserialize_RejectsNodeMissingRequiredField(t *testing.T) {
	data := []byte(`{"id": "root", "type": "div", "props": {}}`)

	_, err := Deserialize(data)
	if err == nil {
		t.Fatal("expected an error for a node missing its children field")
	}
	missing, ok := err.(*ErrMissingField)
	if !ok {
		t.Fatalf("expected ErrMissingField, got %T: %v", err, err)
	}
	if missing.Field != "children" {
		t.Fatalf("expected the missing field to be %q, got %q", "children", missing.Field)
	}
}

func TestDeserialize_RejectsChildMissingRequiredField(t *testing.T) {
	data := []byte(`{
		"id": "root", "type": "div", "props": {}, "children": [
			{"id": "child", "props": {}, "children": []}
		]
	}`)

	_, err := Deserialize(data)
	if err == nil {
		t.Fatal("expected an error for a child node missing its type field")
	}
	missing, ok := err.(*ErrMissingField)
	if !ok {
		t.Fatalf("expected ErrMissingField, got %T: %v", err, err)
	}
	if missing.Field != "type" {
		t.Fatalf("expected the missing field to be %q, got %q", "type", missing.Field)
	}
}

func TestFlatten_CollectsAllNodes(t *testing.T) {
	root := RemoteDomComponent{
		ID:   "root",
		Type: "div",
		Children: []RemoteDomComponent{
			{ID: "a", Type: "span"},
			{ID: "b", Type: "span", Children: []RemoteDomComponent{
				{ID: "c", IsText: true, Text: "leaf"},
			}},
		},
	}

	flat := Flatten(root)
	for _, id := range []string{"root", "a", "b", "c"} {
		if _, ok := flat[id]; !ok {
			t.Fatalf("expected id %q in flattened map", id)
		}
	}
}

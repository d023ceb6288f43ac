// Package schema is the typed argument-schema AST that replaces runtime
// JSON-Schema-string inspection (design note §9: "Runtime reflection on
// tool schemas → explicit schema walker"). A Schema fully determines the
// validity of a tool's arguments.
package schema

// Kind is the JavaScript-typeof-shaped kind a property must match.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
	// KindAny means "declared with no type" — any value is accepted, the
	// schema only asserts presence (via Required), not shape.
	KindAny Kind = ""
)

// Property describes one argument.
type Property struct {
	Name string
	Kind Kind
}

// Schema is the tagged AST for a tool's inputSchema.
type Schema struct {
	Properties []Property
	Required   []string
}

// Lookup finds a declared property by name.
func (s Schema) Lookup(name string) (Property, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// IsRequired reports whether name is in the schema's required list.
func (s Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Matches reports whether a decoded JSON value's Go runtime type matches
// the declared Kind, the same way the source's typeof/Array.isArray checks
// do (spec §4.E step 3).
func (k Kind) Matches(value any) bool {
	switch k {
	case KindAny:
		return true
	case KindString:
		_, ok := value.(string)
		return ok
	case KindNumber:
		_, ok := value.(float64)
		return ok
	case KindBoolean:
		_, ok := value.(bool)
		return ok
	case KindArray:
		_, ok := value.([]any)
		return ok
	case KindObject:
		_, ok := value.(map[string]any)
		return ok
	default:
		return false
	}
}

// TypeName returns the JSON-Schema-style name used in error messages.
func (k Kind) TypeName() string {
	if k == KindAny {
		return "any"
	}
	return string(k)
}

// GoTypeName describes the actual runtime kind of a decoded JSON value,
// for "expected X, got Y" error messages.
func GoTypeName(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	default:
		return "unknown"
	}
}

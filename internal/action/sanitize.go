package action

// SanitizeParams returns a new map containing only entries whose value is a
// JSON primitive: string, float64 (JSON numbers decode to float64), bool, or
// nil. Maps, slices, and any other type are dropped entirely — sanitization
// is shallow by design (spec §4.A): parameters are declared primitives-only,
// so a nested structure is not a parameter that partially survives, it is a
// parameter that was never valid and disappears whole. SanitizeParams never
// panics or returns an error; an unsanitizable input just yields fewer keys.
func SanitizeParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		switch v.(type) {
		case string, float64, bool, nil:
			out[k] = v
		default:
			// functions, objects, arrays — not representable as a
			// postMessage-safe primitive, dropped.
		}
	}
	return out
}

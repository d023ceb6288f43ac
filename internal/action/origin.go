package action

import "net/url"

// ValidateOrigin implements the fixed origin whitelist from spec §4.A/§6.
// It accepts:
//   - the literal string "null" (srcdoc or sandboxed frame without
//     allow-same-origin) — accepted unconditionally, so a caller that renders
//     frames which also report "null" under a different sandbox setup (for
//     example a file: frame granted allow-same-origin) must gate it itself;
//   - any origin with scheme https;
//   - any origin with scheme http whose hostname is localhost or 127.0.0.1,
//     regardless of port.
//
// Everything else — file:, javascript:, data:, non-localhost http, and
// strings that fail to parse as a URL — is rejected. This is a whitelist:
// adding schemes requires a code change here, not a configuration change.
func ValidateOrigin(origin string) bool {
	if origin == "null" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme == "" || u.Host == "" {
		return false
	}

	switch u.Scheme {
	case "https":
		return true
	case "http":
		switch u.Hostname() {
		case "localhost", "127.0.0.1":
			return true
		default:
			return false
		}
	default:
		return false
	}
}

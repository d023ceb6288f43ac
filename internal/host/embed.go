package host

import (
	"embed"
)

//go:embed assets/ui_interactive.js
var assetsFS embed.FS

// InteractiveScript returns the embedded window.UIInteractive bridge script
// served alongside every rendered resource.
func InteractiveScript() ([]byte, error) {
	return assetsFS.ReadFile("assets/ui_interactive.js")
}

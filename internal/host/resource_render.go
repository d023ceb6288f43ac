package host

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/agentoven/mcpuibridge/internal/uiresource"
)

// RenderedFrame is the sandboxed-iframe markup for one UIResource: the
// concrete attribute string and either inline srcdoc content or a src URL.
type RenderedFrame struct {
	Sandbox string
	Srcdoc  string
	Src     string
}

// RenderResource turns a UIResource into the sandbox attributes and
// content spec §6 prescribes per mime type. Remote-DOM resources are not
// handled here — component C renders those into a RenderedNode tree
// instead of iframe markup.
func RenderResource(r uiresource.UIResource, script []byte) (RenderedFrame, error) {
	switch r.MimeType {
	case uiresource.MimeHTML:
		return renderHTML(r, script), nil
	case uiresource.MimeURIList:
		return renderURIList(r)
	default:
		return RenderedFrame{}, fmt.Errorf("host: %s is not an iframe mime type", r.MimeType)
	}
}

// interactive is a simple heuristic for spec §6's undefined "is the
// resource interactive" test: presence of a <form> element.
func interactive(text string) bool {
	return strings.Contains(strings.ToLower(text), "<form")
}

func renderHTML(r uiresource.UIResource, script []byte) RenderedFrame {
	sandbox := "allow-scripts"
	if interactive(r.Text) {
		sandbox += " allow-forms"
	}

	var body strings.Builder
	body.WriteString(r.Text)
	if len(script) > 0 {
		body.WriteString("\n<script>")
		body.Write(script)
		body.WriteString("</script>")
	}

	return RenderedFrame{Sandbox: sandbox, Srcdoc: body.String()}
}

func renderURIList(r uiresource.UIResource) (RenderedFrame, error) {
	for _, line := range strings.Split(r.Text, "\n") {
		candidate := strings.TrimSpace(line)
		if candidate == "" || strings.HasPrefix(candidate, "#") {
			continue
		}
		if _, err := url.Parse(candidate); err != nil {
			continue
		}
		return RenderedFrame{Sandbox: "allow-scripts allow-same-origin", Src: candidate}, nil
	}
	return RenderedFrame{}, fmt.Errorf("host: no usable URL in text/uri-list resource %s", r.URI)
}

// EscapeForSrcdoc escapes text for safe inclusion inside an HTML attribute
// value (srcdoc is typically set as an attribute, not innerHTML).
func EscapeForSrcdoc(s string) string {
	return html.EscapeString(s)
}

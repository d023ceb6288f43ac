// Package uiresource defines the UIResource data model (spec §3) shared by
// the MCP server (which publishes resources) and the host (which renders
// them into sandboxed iframes).
package uiresource

// MimeType identifies how a resource's Text payload is interpreted.
type MimeType string

const (
	// MimeHTML is inline sandboxed HTML rendered via <iframe srcdoc>.
	MimeHTML MimeType = "text/html"
	// MimeURIList is one candidate external URL per line.
	MimeURIList MimeType = "text/uri-list"
	// MimeRemoteDOM is a serialized remote-DOM component tree.
	MimeRemoteDOM MimeType = "application/vnd.mcp-ui.remote-dom+javascript"
)

// FrameSize is the meta.preferredFrameSize hint.
type FrameSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Meta carries the recognized optional UIResource.meta keys.
type Meta struct {
	PreferredFrameSize *FrameSize `json:"preferredFrameSize,omitempty"`
	RemoteDOM          bool       `json:"remoteDom,omitempty"`
	// Chunked marks a resource whose resources.read response should be
	// delivered as multiple stream frames instead of one payload — used
	// for large remote-DOM trees (§9 supplemented feature).
	Chunked bool `json:"-"`
}

// UIResource is a renderable unit produced by the server and consumed by
// the host. Resources are immutable once published: nothing in this
// package mutates a UIResource's Text or MimeType after construction.
type UIResource struct {
	URI      string   `json:"uri"`
	MimeType MimeType `json:"mimeType"`
	Text     string   `json:"text"`
	Meta     Meta     `json:"meta,omitempty"`
}

// New constructs a UIResource. It does not validate uri uniqueness — that
// is the store's job (spec: "uri is unique per server").
func New(uri string, mime MimeType, text string, meta Meta) UIResource {
	return UIResource{URI: uri, MimeType: mime, Text: text, Meta: meta}
}

package uiresource

// chunkSize bounds how much of a resource's Text one streamed frame
// carries when Meta.Chunked is set (§9 supplemented feature:
// "resources.read streaming for remote-DOM payloads"). Large remote-DOM
// trees are split across frames instead of sent as one oversized response.
const chunkSize = 4096

// Chunk is one frame of a chunked resources.read response.
type Chunk struct {
	URI      string   `json:"uri"`
	MimeType MimeType `json:"mimeType"`
	Text     string   `json:"text"`
	Done     bool     `json:"done"`
}

// Publish splits r into the sequence of Chunk frames its resources.read
// response should be delivered as. A resource not marked Chunked, or one
// whose Text fits in a single chunk, yields exactly one frame with
// Done=true — the always-present single-shot path required alongside the
// streaming one.
func Publish(r UIResource) []Chunk {
	if !r.Meta.Chunked || len(r.Text) <= chunkSize {
		return []Chunk{{URI: r.URI, MimeType: r.MimeType, Text: r.Text, Done: true}}
	}

	chunks := make([]Chunk, 0, len(r.Text)/chunkSize+1)
	for start := 0; start < len(r.Text); start += chunkSize {
		end := start + chunkSize
		if end > len(r.Text) {
			end = len(r.Text)
		}
		chunks = append(chunks, Chunk{
			URI:      r.URI,
			MimeType: r.MimeType,
			Text:     r.Text[start:end],
			Done:     end == len(r.Text),
		})
	}
	return chunks
}

package uiresource

import "testing"

func TestPublish_NonChunkedYieldsSingleDoneFrame(t *testing.T) {
	r := New("ui://a", MimeHTML, "<p>hi</p>", Meta{})
	chunks := Publish(r)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !chunks[0].Done || chunks[0].Text != r.Text {
		t.Fatalf("unexpected chunk: %+v", chunks[0])
	}
}

func TestPublish_ChunkedSplitsAndReassembles(t *testing.T) {
	text := make([]byte, chunkSize*3+17)
	for i := range text {
		text[i] = byte('a' + i%26)
	}
	r := New("ui://big", MimeRemoteDOM, string(text), Meta{Chunked: true})

	chunks := Publish(r)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}

	var reassembled string
	for i, c := range chunks {
		if c.URI != r.URI || c.MimeType != r.MimeType {
			t.Fatalf("chunk %d lost uri/mimeType: %+v", i, c)
		}
		reassembled += c.Text
		wantDone := i == len(chunks)-1
		if c.Done != wantDone {
			t.Fatalf("chunk %d: done=%v, want %v", i, c.Done, wantDone)
		}
	}
	if reassembled != string(text) {
		t.Fatal("reassembled chunks do not match original text")
	}
}

func TestPublish_ChunkedButFitsOneChunkYieldsSingleFrame(t *testing.T) {
	r := New("ui://small", MimeHTML, "short", Meta{Chunked: true})
	chunks := Publish(r)
	if len(chunks) != 1 || !chunks[0].Done {
		t.Fatalf("expected a single done chunk, got %+v", chunks)
	}
}

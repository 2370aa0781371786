package normalize

import (
	"io"
	"strings"
)

// Encoding names how Payload.Content is represented.
type Encoding string

const (
	EncodingBase64 Encoding = "base64"
	EncodingText   Encoding = "text"
)

// File is an uploaded document awaiting normalization.
type File struct {
	Name      string
	MediaType string
	Size      int64
	Content   io.Reader
}

// Payload is the normalized representation sent to the analysis client.
type Payload struct {
	Content   string   `json:"content"`
	Encoding  Encoding `json:"encoding"`
	MediaType string   `json:"mediaType"`
}

// IsBinary reports whether Content is base64-encoded bytes.
func (p Payload) IsBinary() bool {
	return p.Encoding == EncodingBase64
}

// DataURI renders a base64 payload as a data URI. Text payloads return "".
func (p Payload) DataURI() string {
	if !p.IsBinary() {
		return ""
	}
	return "data:" + p.MediaType + ";base64," + p.Content
}

// StripDataURI removes a leading "data:<type>;base64," prefix if present.
func StripDataURI(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if _, rest, ok := strings.Cut(s, ";base64,"); ok {
		return rest
	}
	return s
}

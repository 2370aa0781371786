// Package normalize converts uploaded documents into the payload shapes the
// analysis service consumes: base64 bytes for images and PDFs, extracted text
// for plain text and word-processor documents.
package normalize

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// Normalizer converts Files into Payloads under a size limit.
type Normalizer struct {
	MaxSize int64
}

func New(maxSize int64) *Normalizer {
	return &Normalizer{MaxSize: maxSize}
}

// CheckSize rejects files whose declared size exceeds MaxSize.
// A file of exactly MaxSize is accepted.
func (n *Normalizer) CheckSize(f File) error {
	if n.MaxSize > 0 && f.Size > n.MaxSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrSizeLimitExceeded, f.Size, n.MaxSize)
	}
	return nil
}

// Normalize reads f and produces its Payload.
// Unsupported formats fail with ErrUnsupportedFormat; unreadable content fails with ErrReadFailed.
func (n *Normalizer) Normalize(ctx context.Context, f File) (Payload, error) {
	if err := n.CheckSize(f); err != nil {
		return Payload{}, err
	}

	mediaType := BaseMediaType(f.MediaType)
	kind := Classify(mediaType, f.Name)
	if kind == KindUnsupported && !NeedsSniff(mediaType) {
		return Payload{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, describe(mediaType, f.Name))
	}

	data, err := n.read(ctx, f)
	if err != nil {
		return Payload{}, err
	}

	if NeedsSniff(mediaType) {
		mediaType = Sniff(data)
		kind = Classify(mediaType, f.Name)
	}

	switch kind {
	case KindImagePDF:
		return Payload{
			Content:   encodeBinary(data),
			Encoding:  EncodingBase64,
			MediaType: mediaType,
		}, nil
	case KindPlainText:
		// Legacy encodings decode lossily; invalid sequences become U+FFFD.
		return Payload{
			Content:   strings.ToValidUTF8(string(data), "\uFFFD"),
			Encoding:  EncodingText,
			MediaType: mediaType,
		}, nil
	case KindWordDocument:
		text, err := extractDocxText(data)
		if err != nil {
			return Payload{}, err
		}
		if mediaType != MediaTypeDOCX {
			mediaType = MediaTypeDOCX
		}
		return Payload{
			Content:   text,
			Encoding:  EncodingText,
			MediaType: mediaType,
		}, nil
	default:
		return Payload{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, describe(mediaType, f.Name))
	}
}

// read consumes f.Content, enforcing MaxSize on the actual byte count.
func (n *Normalizer) read(ctx context.Context, f File) ([]byte, error) {
	if f.Content == nil {
		return nil, fmt.Errorf("%w: no content", ErrReadFailed)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	r := f.Content
	if n.MaxSize > 0 {
		r = io.LimitReader(f.Content, n.MaxSize+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	if n.MaxSize > 0 && int64(len(data)) > n.MaxSize {
		return nil, fmt.Errorf("%w: content larger than %d bytes", ErrSizeLimitExceeded, n.MaxSize)
	}
	return data, nil
}

// encodeBinary base64-encodes data unless the client already sent a base64 data URI.
func encodeBinary(data []byte) string {
	if s := string(data); len(s) > 5 && s[:5] == "data:" {
		stripped := StripDataURI(s)
		if stripped != s {
			if _, err := base64.StdEncoding.DecodeString(stripped); err == nil {
				return stripped
			}
		}
	}
	return base64.StdEncoding.EncodeToString(data)
}

func describe(mediaType, name string) string {
	if mediaType == "" {
		return fmt.Sprintf("%q (no media type)", name)
	}
	return fmt.Sprintf("%q (%s)", name, mediaType)
}

package normalize

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageCount returns the number of pages of a PDF payload.
// Non-PDF payloads report zero pages.
func PageCount(p Payload) (int, error) {
	if !p.IsBinary() || BaseMediaType(p.MediaType) != MediaTypePDF {
		return 0, nil
	}

	data, err := base64.StdEncoding.DecodeString(p.Content)
	if err != nil {
		return 0, fmt.Errorf("decode pdf payload: %w", err)
	}

	count, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("count pdf pages: %w", err)
	}
	return count, nil
}

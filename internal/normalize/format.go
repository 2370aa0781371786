package normalize

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind is the closed set of input formats the pipeline accepts.
type Kind int

const (
	KindUnsupported Kind = iota
	KindImagePDF
	KindPlainText
	KindWordDocument
)

const (
	MediaTypePDF   = "application/pdf"
	MediaTypeText  = "text/plain"
	MediaTypeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mediaTypeOctet = "application/octet-stream"
)

func (k Kind) String() string {
	switch k {
	case KindImagePDF:
		return "image_pdf"
	case KindPlainText:
		return "plain_text"
	case KindWordDocument:
		return "word_document"
	default:
		return "unsupported"
	}
}

// Encoding returns the payload encoding produced for the kind.
func (k Kind) Encoding() Encoding {
	switch k {
	case KindImagePDF:
		return EncodingBase64
	case KindPlainText, KindWordDocument:
		return EncodingText
	default:
		return ""
	}
}

// Classify maps a declared media type and file name onto a Kind.
// A supported declared type wins; otherwise a .docx extension selects KindWordDocument.
func Classify(mediaType, fileName string) Kind {
	switch mt := BaseMediaType(mediaType); {
	case strings.HasPrefix(mt, "image/"), mt == MediaTypePDF:
		return KindImagePDF
	case mt == MediaTypeText:
		return KindPlainText
	case mt == MediaTypeDOCX:
		return KindWordDocument
	}

	if strings.EqualFold(filepath.Ext(fileName), ".docx") {
		return KindWordDocument
	}
	return KindUnsupported
}

// BaseMediaType lowercases mediaType and strips any parameters.
func BaseMediaType(mediaType string) string {
	if mediaType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// NeedsSniff reports whether a declared media type carries no usable information.
func NeedsSniff(mediaType string) bool {
	mt := BaseMediaType(mediaType)
	return mt == "" || mt == mediaTypeOctet
}

// Sniff detects the media type of data from its content.
func Sniff(data []byte) string {
	return BaseMediaType(mimetype.Detect(data).String())
}

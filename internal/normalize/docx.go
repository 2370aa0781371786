package normalize

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// extractDocxText returns the prose of a .docx archive, one line per paragraph.
// Styling and embedded media are discarded.
func extractDocxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx archive: %v", ErrReadFailed, err)
	}

	f, err := zr.Open(docxBody)
	if err != nil {
		return "", fmt.Errorf("%w: %s missing", ErrReadFailed, docxBody)
	}
	defer f.Close()

	text, err := collectRuns(f)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return text, nil
}

func collectRuns(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out     strings.Builder
		line    strings.Builder
		inText  bool
		inRun   int
		started bool
	)

	flush := func() {
		if started {
			out.WriteByte('\n')
		}
		out.WriteString(line.String())
		line.Reset()
		started = true
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				inRun++
			case "t":
				inText = true
			case "tab":
				// w:tab outside a run is a tab-stop definition in w:pPr.
				if inRun > 0 {
					line.WriteByte('\t')
				}
			case "br", "cr":
				line.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun--
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}

	if line.Len() > 0 {
		flush()
	}
	return strings.TrimSpace(out.String()), nil
}

package analysis

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("schema.json")
})

// Validate parses raw model output into a Result.
// JSON is read directly or from a markdown code fence, checked against the
// embedded schema, and normalized: array fields keep only non-empty strings,
// parties are deduplicated, and non-legal results are cleared down to ErrorMessage.
func Validate(raw []byte) (Result, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return Result{}, err
	}

	schema, err := compileSchema()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := schema.Validate(doc); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	obj := doc.(map[string]any)
	result := Result{IsLegalDocument: obj["isLegalDocument"].(bool)}

	if !result.IsLegalDocument {
		result.ErrorMessage = stringField(obj, "errorMessage")
		if result.ErrorMessage == "" {
			result.ErrorMessage = DefaultRejection
		}
		return emptyArrays(result), nil
	}

	result.DocumentType = stringField(obj, "documentType")
	result.Summary = stringField(obj, "summary")
	result.KeyPoints = stringsField(obj, "keyPoints")
	result.Risks = stringsField(obj, "risks")
	result.Actions = stringsField(obj, "actions")
	result.Parties = lo.Uniq(stringsField(obj, "parties"))
	result.Dates = stringsField(obj, "dates")

	if result.Summary == "" {
		return Result{}, fmt.Errorf("%w: legal document result has no summary", ErrMalformedResponse)
	}
	return result, nil
}

func extractJSON(raw []byte) (any, error) {
	content := strings.TrimSpace(string(raw))

	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err == nil {
		return requireObject(doc)
	}

	if matches := jsonBlockRegex.FindStringSubmatch(content); len(matches) >= 2 {
		if err := json.Unmarshal([]byte(strings.TrimSpace(matches[1])), &doc); err == nil {
			return requireObject(doc)
		}
	}

	return nil, fmt.Errorf("%w: could not parse JSON from response", ErrMalformedResponse)
}

func requireObject(doc any) (any, error) {
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: response is not a JSON object", ErrMalformedResponse)
	}
	return doc, nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

func stringsField(obj map[string]any, key string) []string {
	items, _ := obj[key].([]any)
	return lo.FilterMap(items, func(item any, _ int) (string, bool) {
		s, ok := item.(string)
		s = strings.TrimSpace(s)
		return s, ok && s != ""
	})
}

// Check enforces the Result invariants on a typed result. A legal result
// needs a summary; a non-legal one keeps only its ErrorMessage.
// Clients that bypass Validate are held to the same shape.
func Check(r Result) (Result, error) {
	if !r.IsLegalDocument {
		msg := strings.TrimSpace(r.ErrorMessage)
		return emptyArrays(Result{ErrorMessage: lo.Ternary(msg == "", DefaultRejection, msg)}), nil
	}

	r.Summary = strings.TrimSpace(r.Summary)
	if r.Summary == "" {
		return Result{}, fmt.Errorf("%w: legal document result has no summary", ErrMalformedResponse)
	}
	r.ErrorMessage = ""
	r.KeyPoints = compact(r.KeyPoints)
	r.Risks = compact(r.Risks)
	r.Actions = compact(r.Actions)
	r.Parties = lo.Uniq(compact(r.Parties))
	r.Dates = compact(r.Dates)
	return emptyArrays(r), nil
}

func compact(items []string) []string {
	return lo.FilterMap(items, func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
}

// emptyArrays replaces nil slices so results always serialize arrays.
func emptyArrays(r Result) Result {
	r.KeyPoints = lo.Ternary(r.KeyPoints == nil, []string{}, r.KeyPoints)
	r.Risks = lo.Ternary(r.Risks == nil, []string{}, r.Risks)
	r.Actions = lo.Ternary(r.Actions == nil, []string{}, r.Actions)
	r.Parties = lo.Ternary(r.Parties == nil, []string{}, r.Parties)
	r.Dates = lo.Ternary(r.Dates == nil, []string{}, r.Dates)
	return r
}

package analysis

import (
	"fmt"

	"github.com/JaimeStill/legal-lab/internal/normalize"
)

// SystemPrompt instructs the model to classify the document and answer with
// a single JSON object matching schema.json.
const SystemPrompt = `You are a legal document analyst. Decide whether the supplied document is a legal document (contract, agreement, lease, notice, court filing, power of attorney, will, policy, or similar) and analyze it.

Respond with exactly one JSON object and nothing else. Do not use markdown or code fences.

If the document is a legal document:
{
  "isLegalDocument": true,
  "documentType": "<short type, e.g. Residential Lease>",
  "summary": "<plain-language summary, 2-4 sentences>",
  "keyPoints": ["<important term or obligation>", ...],
  "risks": ["<clause or omission that could harm the reader>", ...],
  "actions": ["<concrete next step for the reader>", ...],
  "parties": ["<name of each party>", ...],
  "dates": ["<each date or deadline mentioned, as written>", ...]
}

If it is not a legal document:
{
  "isLegalDocument": false,
  "errorMessage": "<one sentence telling the user what kind of document to upload instead>"
}`

// UserPrompt returns the instruction text that accompanies the payload.
func UserPrompt(p normalize.Payload) string {
	if p.IsBinary() {
		return fmt.Sprintf("Analyze the attached document (%s).", p.MediaType)
	}
	return fmt.Sprintf("Analyze the following document text (%s):\n\n%s", p.MediaType, p.Content)
}

package prompt

import (
	"encoding/json"
	"fmt"
	"os"
)

// executiveSummary is the fixed system instruction for the report narrative.
// The model writes Markdown because the renderer understands headings,
// paragraphs and bullets; anything fancier gets ignored downstream.
const executiveSummary = `You are a senior smart contract security auditor writing an executive summary for a paying customer.

You receive one JSON object with two keys: "slither" (structural static analysis output) and "mythril" (symbolic execution output). Produce a concise Markdown summary of the combined findings.

Requirements:
- Start with a one-paragraph overall risk assessment.
- Follow with a "## Key Findings" section: one bullet per distinct issue, highest severity first, naming the affected function or pattern where the data allows it.
- Follow with a "## Recommended Actions" section: short, actionable bullets.
- Use plain headings, paragraphs and "-" bullets only. No tables, no code fences, no links.
- Do not invent findings that are not present in the input. If both reports are empty, say so plainly and recommend a manual review cadence.
- Keep the whole summary under 500 words.`

// ExecutiveSummary returns the built-in system instruction.
func ExecutiveSummary() string {
	return executiveSummary
}

// Load reads a prompt template from disk, for operators who want to tune the
// instruction without rebuilding. Falls back to the built-in text when path
// is empty.
func Load(path string) (string, error) {
	if path == "" {
		return executiveSummary, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt template: %w", err)
	}
	return string(data), nil
}

// FindingsPayload serializes both raw reports into the single user message
// the reasoning service receives.
func FindingsPayload(slither, mythril map[string]any) (string, error) {
	payload := map[string]any{
		"slither": slither,
		"mythril": mythril,
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal findings payload: %w", err)
	}
	return string(b), nil
}

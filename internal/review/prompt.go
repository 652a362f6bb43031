package review

import (
	"bytes"
	"fmt"
	"text/template"
)

// Templates for building prompts
const systemInstructionTemplate = `You are a senior engineer reviewing a proposed code change. Your **PRIMARY GOAL** is to respond with a **VALID JSON object** and nothing else.

Follow this schema **EXACTLY** without adding any additional fields:

{
  "summary": "Brief overview of the review outcome",
  "overall_risk": "low|medium|high|critical",
  "issues": [
    {
      "file": "path/to/file.go",
      "line": 42,
      "severity": "info|low|medium|high|critical|security",
      "title": "Short issue title",
      "detail": "Explanation of the problem and its impact",
      "suggestion": "Concrete fix, if one exists",
      "tags": ["bug"]
    }
  ]
}

IMPORTANT:
- **ONLY** include the fields specified above.
- **INCLUDE** all three top-level fields even when there are no issues.
- Use the "security" severity for vulnerabilities such as injection, hardcoded credentials, or unsafe deserialization.
- Report line numbers relative to the new version of each file.
- If nothing is wrong, respond with: {"summary": "No issues found", "overall_risk": "low", "issues": []}

Respond with the JSON object only. Do not wrap it in markdown fences.`

const changesetTemplate = `## Change under review: {{.Subject}}

### Files
{{range .Files}}- {{.Path}}{{if .Language}} ({{.Language}}){{end}}
{{end}}
### Diff

{{.Payload}}`

// FileEntry is one line of the prompt's file manifest.
type FileEntry struct {
	Path     string
	Language string
}

// BuildSystemInstruction returns the system prompt that pins down the
// response schema.
func BuildSystemInstruction() string {
	return systemInstructionTemplate
}

// BuildChangesetPrompt renders the user prompt: a file manifest
// followed by the budgeted diff payload.
func BuildChangesetPrompt(subject string, files []FileEntry, payload string) (string, error) {
	tmpl, err := template.New("changeset").Parse(changesetTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing changeset template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"Subject": subject,
		"Files":   files,
		"Payload": payload,
	}); err != nil {
		return "", fmt.Errorf("rendering changeset prompt: %w", err)
	}

	return buf.String(), nil
}

package gemini

import (
	"bytes"
	"text/template"

	"github.com/revisehq/revision-api/internal/generation"
)

// promptTemplateText instructs the model to return strict JSON so the
// response can be parsed without free-text scraping.
const promptTemplateText = `You are generating study flashcards for a school student.

Topic: {{.Topic}}
{{- if .SubjectID}}
Curriculum subject identifier: {{.SubjectID}}
{{- end}}

Produce between 3 and {{.MaxCandidates}} flashcards covering the topic.
Each flashcard has a short question on the front, a concise answer on the
back, and optionally a one-line hint.

Respond with JSON only, no markdown fences, matching exactly:
{"cards":[{"front":"...","back":"...","hint":"..."}]}`

var promptTemplate = template.Must(template.New("candidates").Parse(promptTemplateText))

type promptData struct {
	Topic         string
	SubjectID     string
	MaxCandidates int
}

// buildPrompt renders the candidate-generation prompt for a topic.
func buildPrompt(data promptData) (string, error) {
	if data.Topic == "" {
		return "", generation.ErrEmptyTopic
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

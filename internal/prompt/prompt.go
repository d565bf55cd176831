// Package prompt renders the instruction text sent to the generation backend.
package prompt

import "strings"

// Section markers understood by the instruction-tuned checkpoint. The model
// was tuned on this exact layout; changing it degrades answers.
const (
	QuestionMarker = "[QUESTION]"
	FactsMarker    = "[FACTS]"

	instruction = "Please answer the following question based on the given text:"
)

// Build combines a question and its supporting context into a single
// instruction block. Both inputs are embedded verbatim: no trimming, no
// truncation, no escaping. Deterministic and total; empty strings yield
// empty sections.
func Build(question, context string) string {
	var b strings.Builder
	b.Grow(len(instruction) + len(QuestionMarker) + len(FactsMarker) + len(question) + len(context) + 8)
	b.WriteString("\n")
	b.WriteString(instruction)
	b.WriteString("\n\n")
	b.WriteString(QuestionMarker)
	b.WriteString("\n")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(FactsMarker)
	b.WriteString("\n")
	b.WriteString(context)
	b.WriteString("\n")
	return b.String()
}

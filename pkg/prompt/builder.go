package prompt

import (
	"strings"

	"live-assist-be/pkg/assistant"
	"live-assist-be/pkg/vectorindex"
)

// Builder assembles the generation prompt from the persona, retrieved
// context, the recent transcript and the question itself.
type Builder struct {
	persona        *assistant.Assistant
	contexts       []vectorindex.Candidate
	transcriptTail []string
	question       string
	inferred       bool
}

func NewBuilder(persona *assistant.Assistant, contexts []vectorindex.Candidate, transcriptTail []string, question string, inferred bool) *Builder {
	return &Builder{
		persona:        persona,
		contexts:       contexts,
		transcriptTail: transcriptTail,
		question:       question,
		inferred:       inferred,
	}
}

func (b *Builder) Build() string {
	var prompt strings.Builder

	b.writePersona(&prompt)
	b.writeReferenceMaterial(&prompt)
	b.writeTranscript(&prompt)
	b.writeGuidelines(&prompt)
	b.writeQuestion(&prompt)

	return prompt.String()
}

func (b *Builder) writePersona(prompt *strings.Builder) {
	if b.persona == nil {
		prompt.WriteString("<role>\n")
		prompt.WriteString("You are a live meeting assistant. Answer the question concisely using the reference material and conversation so far.\n")
		prompt.WriteString("</role>\n\n")
		return
	}

	prompt.WriteString("<role>\n")
	if b.persona.SystemPrompt != "" {
		prompt.WriteString(b.persona.SystemPrompt)
		prompt.WriteString("\n")
	}
	if b.persona.ResumeContent != "" {
		prompt.WriteString("\nBackground of the person you are assisting:\n")
		prompt.WriteString(b.persona.ResumeContent)
		prompt.WriteString("\n")
	}
	if len(b.persona.Technologies) > 0 {
		prompt.WriteString("\nRelevant technologies: ")
		prompt.WriteString(strings.Join(b.persona.Technologies, ", "))
		prompt.WriteString("\n")
	}
	prompt.WriteString("</role>\n\n")
}

func (b *Builder) writeReferenceMaterial(prompt *strings.Builder) {
	if len(b.contexts) == 0 {
		return
	}

	prompt.WriteString("<reference_material>\n")
	for _, c := range b.contexts {
		prompt.WriteString(c.Text)
		prompt.WriteString("\n---\n")
	}
	prompt.WriteString("</reference_material>\n\n")
}

func (b *Builder) writeTranscript(prompt *strings.Builder) {
	if len(b.transcriptTail) == 0 {
		return
	}

	prompt.WriteString("<recent_conversation>\n")
	for _, line := range b.transcriptTail {
		prompt.WriteString(line)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</recent_conversation>\n\n")
}

func (b *Builder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. Base your answer on the reference material and the conversation; say so honestly when they don't cover the question\n")
	prompt.WriteString("2. Be direct and complete, this is read aloud during a live conversation\n")
	prompt.WriteString("3. Keep the register natural, as if briefing the user in their ear\n")
	prompt.WriteString("</guidelines>\n\n")
}

func (b *Builder) writeQuestion(prompt *strings.Builder) {
	if b.inferred {
		prompt.WriteString("<detected_question>\n")
		prompt.WriteString("The following question was overheard in the conversation, it was not typed by the user:\n")
		prompt.WriteString(b.question)
		prompt.WriteString("\n</detected_question>\n\n")
		prompt.WriteString("Now answer the overheard question for the user:")
		return
	}

	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("Now provide your complete response:")
}

package prompt

import (
	"strings"

	"mindease-be/pkg/store"
)

const instructions = `You are an expert chat assistant that extracts information from the CONTEXT provided
between <context> and </context> tags.
You offer a chat experience considering the information included in the CHAT HISTORY
provided between <chat_history> and </chat_history> tags.
When answering the question contained between <question> and </question> tags
be concise and do not hallucinate.
If you don't have the information just say so.

Do not mention the CONTEXT used in your answer.
Do not mention the CHAT HISTORY used in your answer.
`

const summaryInstructions = `Based on the chat history below and the question, generate a query that extends the question
with the chat history provided. The query should be in natural language.
Answer with only the query. Do not add any explanation.
`

// BuildPrompt assembles the final completion prompt. Pure: the same inputs always yield the same string.
func BuildPrompt(history []store.Turn, context, question string) string {
	var b strings.Builder

	b.WriteString(instructions)
	b.WriteString("\n")
	writeHistory(&b, history)
	writeSection(&b, "context", context)
	writeSection(&b, "question", question)
	b.WriteString("Answer: ")

	return b.String()
}

// BuildFromContext is BuildPrompt over a PromptContext
func BuildFromContext(pc store.PromptContext) string {
	return BuildPrompt(pc.History, pc.RetrievedText, pc.Question)
}

// BuildSummaryPrompt asks the model to rewrite question into a standalone retrieval query
func BuildSummaryPrompt(history []store.Turn, question string) string {
	var b strings.Builder

	b.WriteString(summaryInstructions)
	b.WriteString("\n")
	writeHistory(&b, history)
	writeSection(&b, "question", question)

	return b.String()
}

// FormatHistory renders turns one per line as "role: content"
func FormatHistory(history []store.Turn) string {
	var b strings.Builder
	for i, turn := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(turn.Role)
		b.WriteString(": ")
		b.WriteString(turn.Content)
	}
	return b.String()
}

func writeHistory(b *strings.Builder, history []store.Turn) {
	writeSection(b, "chat_history", FormatHistory(history))
}

func writeSection(b *strings.Builder, tag, body string) {
	b.WriteString("<")
	b.WriteString(tag)
	b.WriteString(">\n")
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">\n")
}

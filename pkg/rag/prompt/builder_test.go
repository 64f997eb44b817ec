package prompt

import (
	"strings"
	"testing"

	"mindease-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func section(p, tag string) string {
	start := strings.Index(p, "<"+tag+">\n")
	end := strings.Index(p, "</"+tag+">")
	if start < 0 || end < 0 {
		return "MISSING"
	}
	return p[start+len(tag)+3 : end]
}

func TestBuildPrompt_WhatIsX(t *testing.T) {
	p := BuildPrompt(nil, "X is a thing.", "What is X?")

	assert.Equal(t, "", section(p, "chat_history"))
	assert.Equal(t, "X is a thing.\n", section(p, "context"))
	assert.Equal(t, "What is X?\n", section(p, "question"))
	assert.True(t, strings.HasSuffix(p, "Answer: "))
	assert.Contains(t, p, "do not hallucinate")
	assert.Contains(t, p, "If you don't have the information just say so.")
	assert.Contains(t, p, "Do not mention the CONTEXT used in your answer.")
	assert.Contains(t, p, "Do not mention the CHAT HISTORY used in your answer.")
}

func TestBuildPrompt_Idempotent(t *testing.T) {
	history := []store.Turn{
		{Role: store.RoleUser, Content: "What is anxiety?"},
		{Role: store.RoleAssistant, Content: "A feeling of worry."},
	}

	first := BuildPrompt(history, "ctx", "And panic?")
	second := BuildPrompt(history, "ctx", "And panic?")
	assert.Equal(t, first, second)
}

func TestBuildPrompt_SectionOrder(t *testing.T) {
	history := []store.Turn{{Role: store.RoleUser, Content: "hi"}}
	p := BuildPrompt(history, "ctx", "q")

	h := strings.Index(p, "<chat_history>")
	c := strings.Index(p, "<context>")
	q := strings.Index(p, "<question>")
	assert.True(t, h < c && c < q)
	assert.Equal(t, "user: hi\n", section(p, "chat_history"))
}

func TestBuildFromContext(t *testing.T) {
	pc := store.PromptContext{RetrievedText: "ctx", Question: "q"}
	assert.Equal(t, BuildPrompt(nil, "ctx", "q"), BuildFromContext(pc))
}

func TestBuildSummaryPrompt(t *testing.T) {
	history := []store.Turn{
		{Role: store.RoleUser, Content: "What is depression?"},
		{Role: store.RoleAssistant, Content: "A mood disorder."},
	}
	p := BuildSummaryPrompt(history, "How is it treated?")

	assert.Contains(t, p, "Answer with only the query.")
	assert.Equal(t, "user: What is depression?\nassistant: A mood disorder.\n", section(p, "chat_history"))
	assert.Equal(t, "How is it treated?\n", section(p, "question"))
	assert.NotContains(t, p, "<context>")
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "", FormatHistory(nil))
	assert.Equal(t, "user: a\nassistant: b", FormatHistory([]store.Turn{
		{Role: store.RoleUser, Content: "a"},
		{Role: store.RoleAssistant, Content: "b"},
	}))
}

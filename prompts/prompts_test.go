package prompts

import (
	"testing"

	"github.com/aqua777/docbot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTemplateVars(t *testing.T) {
	t.Run("extracts unique vars in order", func(t *testing.T) {
		vars := GetTemplateVars("{a} and {b} then {a} again")
		assert.Equal(t, []string{"a", "b"}, vars)
	})

	t.Run("no vars", func(t *testing.T) {
		assert.Empty(t, GetTemplateVars("plain text"))
	})
}

func TestPromptTemplate(t *testing.T) {
	t.Run("Format substitutes variables", func(t *testing.T) {
		pt := NewPromptTemplate("Hello {name}, ask {question}")
		out := pt.Format(map[string]string{"name": "Bot", "question": "why?"})
		assert.Equal(t, "Hello Bot, ask why?", out)
	})

	t.Run("FormatMessages yields one user message", func(t *testing.T) {
		pt := NewPromptTemplate("Q: {question}")
		msgs := pt.FormatMessages(map[string]string{"question": "what?"})
		require.Len(t, msgs, 1)
		assert.Equal(t, "Q: what?", msgs[0].Content)
	})
}

func TestDefaultPrompts(t *testing.T) {
	t.Run("grounded prompt has context and question vars", func(t *testing.T) {
		pt := NewGroundedAnswerPrompt()
		assert.ElementsMatch(t, []string{"context", "question"}, pt.TemplateVars)
	})

	t.Run("general knowledge prompt has only question", func(t *testing.T) {
		pt := NewGeneralKnowledgePrompt()
		assert.Equal(t, []string{"question"}, pt.TemplateVars)
	})

	t.Run("both demand the three-key contract", func(t *testing.T) {
		for _, tmpl := range []string{GroundedAnswerTemplate, GeneralKnowledgeTemplate} {
			assert.Contains(t, tmpl, `"answer"`)
			assert.Contains(t, tmpl, `"reasoning"`)
			assert.Contains(t, tmpl, `"source_documents"`)
		}
	})
}

func TestFormatContext(t *testing.T) {
	chunks := schema.RetrievalResult{
		{Text: "Revenue was $10M.", Filename: "report.pdf"},
		{Text: "Costs were $2M.", Filename: "costs.xlsx"},
	}
	out := FormatContext(chunks)
	assert.Contains(t, out, "Source Document: 'report.pdf'\nContent: Revenue was $10M.")
	assert.Contains(t, out, "Source Document: 'costs.xlsx'\nContent: Costs were $2M.")
}

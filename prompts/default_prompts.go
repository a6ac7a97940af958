package prompts

import (
	"fmt"
	"strings"

	"github.com/aqua777/docbot/schema"
)

// GroundedAnswerTemplate answers strictly from the supplied document
// context and must list every source filename it actually used.
const GroundedAnswerTemplate = `You are a friendly and helpful AI assistant named Document Bot.
Your job is to provide clear, accurate, and conversational responses based only on the provided context.
The context below is extracted from one or more user-provided documents.

---

Context:
{context}

---

User Question:
{question}

---

Instructions for your response:
You MUST provide your response in a strict JSON format using double quotes.
The JSON object must have three keys:
1. "answer": This MUST be a JSON object with two keys:
    - "summary": A conversational, natural language sentence summarizing the answer. Start with a friendly tone (e.g., "Certainly!", "Yes, it looks like...", "Based on the documents...").
    - "data": The structured data (as a JSON object or list) that contains the detailed information extracted from the context. This should be null if there is no structured data to show.
2. "reasoning": A step-by-step explanation of how you used the provided context.
3. "source_documents": A JSON list of strings, containing the filenames of ALL source documents you used to construct the answer (e.g., ["resume1.pdf", "summary.docx"]).

JSON Response:`

// GeneralKnowledgeTemplate is the fallback used when retrieval found
// nothing relevant: the model answers from general knowledge, data must
// be null and source_documents must be empty.
const GeneralKnowledgeTemplate = `You are a friendly and helpful AI assistant named Document Bot. The user asked a question, but no relevant information was found in their uploaded documents.
Please answer the user's question based on your general knowledge.

Instructions for your response:
You MUST provide your response in a strict JSON format using double quotes.
The JSON object must have three keys:
1. "answer": This MUST be a JSON object with two keys:
    - "summary": A conversational sentence explaining that you couldn't find the answer in the documents and are using general knowledge.
    - "data": This value must be null.
2. "reasoning": State that no relevant information was found in the documents and the answer is based on general knowledge.
3. "source_documents": This value must be an empty list [].

---

User Question:
{question}

---

JSON Response:`

// NewGroundedAnswerPrompt returns the context-grounded answer prompt.
func NewGroundedAnswerPrompt() *PromptTemplate {
	return NewPromptTemplate(GroundedAnswerTemplate)
}

// NewGeneralKnowledgePrompt returns the no-context fallback prompt.
func NewGeneralKnowledgePrompt() *PromptTemplate {
	return NewPromptTemplate(GeneralKnowledgeTemplate)
}

// FormatContext renders retrieved chunks into the context block the
// grounded prompt expects: one source/content pair per chunk, so the
// model can attribute its answer to filenames.
func FormatContext(chunks schema.RetrievalResult) string {
	blocks := make([]string, len(chunks))
	for i, c := range chunks {
		blocks[i] = fmt.Sprintf("Source Document: '%s'\nContent: %s", c.Filename, c.Text)
	}
	return strings.Join(blocks, "\n\n")
}

package usecase

import (
	"fmt"
	"strings"

	"github.com/mncare/medicaid-assistant/internal/core/domain"
)

// historyWindowSize bounds the conversation suffix included in prompts,
// roughly three question/answer pairs.
const historyWindowSize = 6

func composeAnswerPrompt(contextBlock, question string, history domain.History) string {
	window := history.Window(historyWindowSize)
	if len(window) == 0 {
		return answerPrompt(contextBlock, question)
	}
	return answerPromptWithHistory(contextBlock, question, window)
}

func answerPrompt(contextBlock, question string) string {
	return fmt.Sprintf(`You are a helpful assistant specializing in Minnesota Medicaid eligibility and benefits information.
Use the following context from official Minnesota Medicaid documentation to answer the user's question.

Context:
%s

User Question: %s

Instructions:
1. Answer based ONLY on the provided context
2. If the context doesn't contain enough information to fully answer the question, say so
3. Be specific about eligibility requirements, benefits, and processes
4. Include relevant contact information or next steps when appropriate
5. If discussing income limits, mention that they are subject to change and should be verified
6. Always remind users that this is general information and they should contact the Minnesota Department of Human Services for their specific situation

Answer:`, contextBlock, question)
}

func answerPromptWithHistory(contextBlock, question string, history domain.History) string {
	return fmt.Sprintf(`You are a helpful assistant specializing in Minnesota Medicaid eligibility and benefits information.
Use the following context from official Minnesota Medicaid documentation to answer the user's question.

Context:
%s

Previous Conversation:
%s

Current User Question: %s

Instructions:
1. Answer based ONLY on the provided context
2. If the current question refers to something from the previous conversation, use that conversation to resolve the reference
3. If the context doesn't contain enough information to fully answer the question, say so
4. Be specific about eligibility requirements, benefits, and processes
5. Include relevant contact information or next steps when appropriate
6. If discussing income limits, mention that they are subject to change and should be verified
7. Always remind users that this is general information and they should contact the Minnesota Department of Human Services for their specific situation

Answer:`, contextBlock, strings.Join(history, "\n"), question)
}

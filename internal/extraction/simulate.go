package extraction

import (
	"context"
	"strings"

	"github.com/jonathan/persona-builder/internal/llm"
	"github.com/jonathan/persona-builder/internal/prompts"
)

// SimulateAnswer asks the completion service to answer question in the role
// of a coaching client. Used by `collect --simulate` to build demo transcripts.
func SimulateAnswer(ctx context.Context, client llm.Completer, question string) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: prompts.MustGet(prompts.PersonaFile, prompts.SimulateSystem)},
		{Role: llm.RoleUser, Content: question},
	}

	answer, err := client.Complete(ctx, messages, llm.TierLite)
	if err != nil {
		return "", &APICallError{
			Message: "failed to simulate answer",
			Cause:   err,
		}
	}
	return strings.TrimSpace(answer), nil
}

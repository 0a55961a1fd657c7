package agents

import (
	"context"

	"decisionflow/internal/llm"
	"decisionflow/internal/types"
	"decisionflow/internal/utils"
)

const fallbackResponse = "I'm currently unable to access the language model. Using fallback response."

// Agent is one Decision Flow agent: a fixed responsibility wrapped around a
// language model call.
type Agent interface {
	ID() string
	Name() string
	Card(baseURL string) types.AgentCard
	Execute(ctx context.Context, ec types.ExecutionContext) (types.ExecutionResult, error)
}

// LLMAgent carries what every model-backed agent shares: the provider, the
// fixed system instruction and the degraded-mode fallback.
type LLMAgent struct {
	provider     llm.Provider
	systemPrompt string
	logger       *utils.Logger
}

func NewLLMAgent(provider llm.Provider, systemPrompt string, logger *utils.Logger) LLMAgent {
	if logger == nil {
		logger = utils.NewLogger("info")
	}
	return LLMAgent{provider: provider, systemPrompt: systemPrompt, logger: logger}
}

// complete runs the two-entry prompt. With no provider configured it returns
// the fallback text and marks the result degraded instead of failing.
func (a *LLMAgent) complete(ctx context.Context, userText string) (text string, degraded bool, err error) {
	if a.provider == nil {
		a.logger.Warnf("no language model configured, using fallback response")
		return fallbackResponse, true, nil
	}
	text, err = a.provider.Complete(ctx, a.systemPrompt, userText)
	if err != nil {
		return "", false, err
	}
	return text, false, nil
}

// newReply builds the agent's reply message for one execution: role agent,
// same context and task ids as the request.
func newReply(ec types.ExecutionContext, text string, degraded bool) types.Message {
	msg := types.Message{
		Kind:      "message",
		MessageID: utils.NewID("msg"),
		Role:      "agent",
		Parts:     []types.Part{{Kind: "text", Text: text}},
		TaskID:    ec.TaskID,
		ContextID: ec.ContextID,
	}
	if degraded {
		msg.Metadata = map[string]any{"degraded": true}
	}
	return msg
}

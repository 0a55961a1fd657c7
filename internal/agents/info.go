package agents

import (
	"context"
	"errors"
	"fmt"

	"decisionflow/internal/llm"
	"decisionflow/internal/types"
	"decisionflow/internal/utils"
)

const infoSystemPrompt = `You are an AI assistant that gathers the information needed to act on a user request.
Your task is to:
1. Analyze the user's request and identify what information is relevant
2. Provide accurate, complete background facts and context
3. Point out missing details the user should clarify
4. Keep the answer concise and directly usable

Respond in plain text.`

// InfoAgent answers free-text information requests. The model's output is
// relayed as-is.
type InfoAgent struct {
	LLMAgent
}

func NewInfoAgent(provider llm.Provider, logger *utils.Logger) *InfoAgent {
	return &InfoAgent{LLMAgent: NewLLMAgent(provider, infoSystemPrompt, logger)}
}

func (a *InfoAgent) ID() string   { return "get-info" }
func (a *InfoAgent) Name() string { return "Get Info Agent" }

func (a *InfoAgent) Card(baseURL string) types.AgentCard {
	return types.AgentCard{
		ProtocolVersion: "1.0",
		Name:            a.Name(),
		Description:     "Gathers and summarizes the information needed to act on a request. Provides background facts, context, and flags missing details.",
		URL:             baseURL + "/",
		Version:         "1.0.0",
		Provider:        types.Provider{Name: "Decision Flow Systems", URL: "https://github.com/decision-flow-agent"},
		Skills: []types.Skill{{
			ID:          "information_gathering",
			Name:        "Information Gathering",
			Description: "Collects relevant facts and context for any request and highlights open questions",
			Tags:        []string{"information", "research", "context", "analysis"},
			InputModes:  []string{"text", "text/plain"},
			OutputModes: []string{"text", "text/plain"},
		}},
		Capabilities: types.AgentCapabilities{
			Streaming:              true,
			PushNotifications:      false,
			StateTransitionHistory: true,
		},
	}
}

func (a *InfoAgent) Execute(ctx context.Context, ec types.ExecutionContext) (types.ExecutionResult, error) {
	userText := ec.UserMessage.UserText()
	if userText == "" {
		return types.ExecutionResult{}, errors.New("empty user message")
	}

	a.logger.Debugf("info agent processing task %s", ec.TaskID)
	text, degraded, err := a.complete(ctx, userText)
	if err != nil {
		return types.ExecutionResult{}, fmt.Errorf("information lookup failed: %w", err)
	}

	return types.ExecutionResult{Reply: newReply(ec, text, degraded)}, nil
}

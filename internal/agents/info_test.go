package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoAgentRelaysModelReply(t *testing.T) {
	provider := &fakeProvider{reply: "Paris is the capital of France."}
	agent := NewInfoAgent(provider, nil)

	result, err := agent.Execute(context.Background(), planContext("what is the capital of France?"))
	require.NoError(t, err)

	assert.Equal(t, "what is the capital of France?", provider.seen)
	assert.Equal(t, "agent", result.Reply.Role)
	assert.Equal(t, "task-1", result.Reply.TaskID)
	assert.Equal(t, "ctx-1", result.Reply.ContextID)
	require.Len(t, result.Reply.Parts, 1)
	assert.Equal(t, "Paris is the capital of France.", result.Reply.Parts[0].Text)
	assert.Nil(t, result.Reply.Metadata)
	assert.Empty(t, result.Artifacts)
}

func TestInfoAgentDegradedWithoutProvider(t *testing.T) {
	agent := NewInfoAgent(nil, nil)

	result, err := agent.Execute(context.Background(), planContext("anything"))
	require.NoError(t, err)

	require.Len(t, result.Reply.Parts, 1)
	assert.Equal(t, fallbackResponse, result.Reply.Parts[0].Text)
	assert.Equal(t, true, result.Reply.Metadata["degraded"])
}

func TestInfoAgentProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("model unavailable")}
	agent := NewInfoAgent(provider, nil)

	_, err := agent.Execute(context.Background(), planContext("anything"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "information lookup failed")
}

func TestInfoAgentEmptyMessage(t *testing.T) {
	agent := NewInfoAgent(&fakeProvider{reply: "hi"}, nil)

	_, err := agent.Execute(context.Background(), planContext(""))
	require.Error(t, err)
}

func TestAgentCards(t *testing.T) {
	info := NewInfoAgent(nil, nil)
	card := info.Card("http://localhost:10001")
	assert.Equal(t, "Get Info Agent", card.Name)
	assert.Equal(t, "http://localhost:10001/", card.URL)
	require.Len(t, card.Skills, 1)
	assert.Equal(t, "information_gathering", card.Skills[0].ID)

	plan := NewPlanAgent(nil, nil, "", nil)
	card = plan.Card("http://localhost:10002")
	assert.Equal(t, "Create Plan Agent", card.Name)
	require.Len(t, card.Skills, 1)
	assert.Equal(t, "dynamic_planning", card.Skills[0].ID)
}

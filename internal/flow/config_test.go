package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, name := range []string{
		"OPENAI_API_KEY", "OPENAI_MODEL", "AGENT_HOST",
		"GET_INFO_AGENT_PORT", "CREATE_PLAN_AGENT_PORT",
		"TASK_EXECUTOR_URL", "LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, "gpt-4", cfg.OpenAI.Model)
	assert.Equal(t, "localhost", cfg.InfoAgent.Host)
	assert.Equal(t, 10001, cfg.InfoAgent.Port)
	assert.Equal(t, 10002, cfg.PlanAgent.Port)
	assert.Equal(t, "http://localhost:10003", cfg.ExecutorURL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 1024, cfg.TaskStoreSize)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("AGENT_HOST", "0.0.0.0")
	t.Setenv("GET_INFO_AGENT_PORT", "20001")
	t.Setenv("CREATE_PLAN_AGENT_PORT", "20002")
	t.Setenv("TASK_EXECUTOR_URL", "http://executor:8080")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfig()
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "0.0.0.0", cfg.InfoAgent.Host)
	assert.Equal(t, "0.0.0.0", cfg.PlanAgent.Host)
	assert.Equal(t, 20001, cfg.InfoAgent.Port)
	assert.Equal(t, 20002, cfg.PlanAgent.Port)
	assert.Equal(t, "http://executor:8080", cfg.ExecutorURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigIgnoresBadPort(t *testing.T) {
	t.Setenv("GET_INFO_AGENT_PORT", "not-a-port")

	cfg := LoadConfig()
	assert.Equal(t, 10001, cfg.InfoAgent.Port)
}

func TestValidateCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OpenAI.AllowFallback = false
	require.Error(t, cfg.ValidateCredentials())

	cfg.OpenAI.AllowFallback = true
	assert.NoError(t, cfg.ValidateCredentials())

	cfg.OpenAI.AllowFallback = false
	cfg.OpenAI.APIKey = "sk-test"
	assert.NoError(t, cfg.ValidateCredentials())
}

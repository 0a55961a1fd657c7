package flow

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the agent servers and the client need. Values come
// from defaults, then .env, then the process environment.
type Config struct {
	OpenAI struct {
		APIKey        string
		Model         string
		AllowFallback bool
	}
	InfoAgent struct {
		Host string
		Port int
	}
	PlanAgent struct {
		Host string
		Port int
	}
	// ExecutorURL addresses the external execution agent the plan agent
	// forwards to when a plan needs follow-on execution.
	ExecutorURL string
	Logging     struct {
		Level string
	}
	TaskStoreSize int
}

func DefaultConfig() Config {
	cfg := Config{}
	cfg.OpenAI.Model = "gpt-4"
	cfg.OpenAI.AllowFallback = true
	cfg.InfoAgent.Host = "localhost"
	cfg.InfoAgent.Port = 10001
	cfg.PlanAgent.Host = "localhost"
	cfg.PlanAgent.Port = 10002
	cfg.ExecutorURL = "http://localhost:10003"
	cfg.Logging.Level = "info"
	cfg.TaskStoreSize = 1024
	return cfg
}

// LoadConfig builds a Config from defaults overlaid with the environment.
// A .env file in the working directory is loaded first when present;
// existing environment variables win.
func LoadConfig() Config {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	cfg := DefaultConfig()
	cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.OpenAI.Model = model
	}
	if host := os.Getenv("AGENT_HOST"); host != "" {
		cfg.InfoAgent.Host = host
		cfg.PlanAgent.Host = host
	}
	if port, ok := envInt("GET_INFO_AGENT_PORT"); ok {
		cfg.InfoAgent.Port = port
	}
	if port, ok := envInt("CREATE_PLAN_AGENT_PORT"); ok {
		cfg.PlanAgent.Port = port
	}
	if url := os.Getenv("TASK_EXECUTOR_URL"); url != "" {
		cfg.ExecutorURL = url
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg
}

// ValidateCredentials enforces the startup credential requirement for agent
// servers. With fallback allowed a missing key only degrades responses.
func (c Config) ValidateCredentials() error {
	if c.OpenAI.APIKey == "" && !c.OpenAI.AllowFallback {
		return errors.New("missing required environment variable: OPENAI_API_KEY")
	}
	return nil
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

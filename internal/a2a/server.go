package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"decisionflow/internal/agents"
	"decisionflow/internal/flow"
	"decisionflow/internal/types"
	"decisionflow/internal/utils"

	"github.com/a2aproject/a2a-go/a2asrv"
)

// AgentServer serves one agent over HTTP: the A2A JSON-RPC endpoint at the
// root, the agent card at the well-known path, a health probe, and a task
// listing.
type AgentServer struct {
	agent   agents.Agent
	handler a2asrv.RequestHandler
	tasks   *flow.TaskManager
	logger  *utils.Logger
	host    string
	port    int
	http    *http.Server
}

func NewAgentServer(agent agents.Agent, tasks *flow.TaskManager, host string, port int, logger *utils.Logger) *AgentServer {
	if logger == nil {
		logger = utils.NewLogger("info")
	}
	executor := NewFlowExecutor(agent, logger)
	taskStore := NewTaskStoreAdapter(tasks)

	handler := a2asrv.NewHandler(
		executor,
		a2asrv.WithTaskStore(taskStore),
	)

	return &AgentServer{
		agent:   agent,
		handler: handler,
		tasks:   tasks,
		logger:  logger,
		host:    host,
		port:    port,
	}
}

func (s *AgentServer) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", s.host, s.port)
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *AgentServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", a2asrv.NewJSONRPCHandler(s.handler))
	mux.HandleFunc("/.well-known/agent.json", s.handleAgentCard)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/tasks", s.handleTasks)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	s.http = &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.http.Shutdown(ctxShutdown)
	}()

	s.logger.Infof("starting %s on %s", s.agent.Name(), addr)
	s.logger.Infof("agent card available at %s/.well-known/agent.json", s.BaseURL())

	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *AgentServer) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	card := ToSDKAgentCard(s.agent.Card(s.BaseURL()))
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(card); err != nil {
		s.logger.Errorf("failed to encode agent card: %v", err)
	}
}

func (s *AgentServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "agent": s.agent.ID()})
}

// handleTasks lists this agent's stored tasks, filtered by the contextId
// and state query parameters when present.
func (s *AgentServer) handleTasks(w http.ResponseWriter, r *http.Request) {
	contextID := r.URL.Query().Get("contextId")
	state := types.TaskState(r.URL.Query().Get("state"))
	tasks := s.tasks.List(contextID, state)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"tasks": tasks, "count": len(tasks)}); err != nil {
		s.logger.Errorf("failed to encode task list: %v", err)
	}
}

package a2a

import (
	"context"
	"fmt"
	"time"

	"decisionflow/internal/agents"
	"decisionflow/internal/types"
	"decisionflow/internal/utils"

	sdka2a "github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
)

const defaultExecuteTimeout = 30 * time.Second

// FlowExecutor drives one agent through the task lifecycle: submitted,
// working, invoke, then a final completed or failed status. It implements
// a2asrv.AgentExecutor.
type FlowExecutor struct {
	agent   agents.Agent
	logger  *utils.Logger
	timeout time.Duration
}

func NewFlowExecutor(agent agents.Agent, logger *utils.Logger) *FlowExecutor {
	if logger == nil {
		logger = utils.NewLogger("info")
	}
	return &FlowExecutor{agent: agent, logger: logger, timeout: defaultExecuteTimeout}
}

func (e *FlowExecutor) WithTimeout(timeout time.Duration) *FlowExecutor {
	e.timeout = timeout
	return e
}

// eventWriter is the slice of eventqueue.Queue the executor needs; tests
// substitute a recording writer.
type eventWriter func(ctx context.Context, event sdka2a.Event) error

// Execute implements a2asrv.AgentExecutor.
func (e *FlowExecutor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	return e.execute(ctx, reqCtx, queue.Write)
}

func (e *FlowExecutor) execute(ctx context.Context, reqCtx *a2asrv.RequestContext, write eventWriter) error {
	if reqCtx.Message == nil {
		return e.writeFailure(ctx, reqCtx, write, "message required")
	}

	// New task: announce it before any work happens.
	if reqCtx.StoredTask == nil {
		event := sdka2a.NewStatusUpdateEvent(reqCtx, sdka2a.TaskStateSubmitted, nil)
		if err := write(ctx, event); err != nil {
			return fmt.Errorf("failed to write state submitted: %w", err)
		}
	}

	// Working goes out before the model call so a streaming observer knows
	// processing has started.
	event := sdka2a.NewStatusUpdateEvent(reqCtx, sdka2a.TaskStateWorking, nil)
	if err := write(ctx, event); err != nil {
		return fmt.Errorf("failed to write state working: %w", err)
	}

	execCtx := types.ExecutionContext{
		TaskID:      string(reqCtx.TaskID),
		ContextID:   reqCtx.ContextID,
		UserMessage: FromSDKMessage(reqCtx.Message),
	}

	invokeCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		invokeCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	result, err := e.agent.Execute(invokeCtx, execCtx)
	if err != nil {
		e.logger.Errorf("agent %s failed task %s: %v", e.agent.ID(), reqCtx.TaskID, err)
		return e.writeFailure(ctx, reqCtx, write, err.Error())
	}

	for _, artifact := range result.Artifacts {
		artEvent := sdka2a.NewArtifactEvent(reqCtx, ToSDKParts(artifact.Parts)...)
		artEvent.Artifact.Name = artifact.Name
		if err := write(ctx, artEvent); err != nil {
			return fmt.Errorf("failed to write artifact event: %w", err)
		}
	}

	finalEvent := sdka2a.NewStatusUpdateEvent(reqCtx, sdka2a.TaskStateCompleted, ToSDKMessage(result.Reply))
	finalEvent.Final = true
	if err := write(ctx, finalEvent); err != nil {
		return fmt.Errorf("failed to write state completed: %w", err)
	}
	e.logger.Infof("agent %s completed task %s", e.agent.ID(), reqCtx.TaskID)
	return nil
}

// Cancel implements a2asrv.AgentExecutor. Cancelling a task that already
// reached a terminal state emits nothing.
func (e *FlowExecutor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	return e.cancel(ctx, reqCtx, queue.Write)
}

func (e *FlowExecutor) cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, write eventWriter) error {
	if reqCtx.StoredTask != nil && fromSDKTaskState(reqCtx.StoredTask.Status.State).Terminal() {
		e.logger.Debugf("cancel ignored for terminal task %s", reqCtx.TaskID)
		return nil
	}

	ack := newAgentMessage(reqCtx, "Task has been cancelled.")
	event := sdka2a.NewStatusUpdateEvent(reqCtx, sdka2a.TaskStateCanceled, ack)
	event.Final = true
	if err := write(ctx, event); err != nil {
		return fmt.Errorf("failed to write state canceled: %w", err)
	}
	e.logger.Infof("agent %s canceled task %s", e.agent.ID(), reqCtx.TaskID)
	return nil
}

// writeFailure emits the final failed status with a user-safe explanation.
func (e *FlowExecutor) writeFailure(ctx context.Context, reqCtx *a2asrv.RequestContext, write eventWriter, errMsg string) error {
	errorMessage := newAgentMessage(reqCtx, errMsg)
	errorMessage.Metadata = map[string]any{
		"error":     true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	event := sdka2a.NewStatusUpdateEvent(reqCtx, sdka2a.TaskStateFailed, errorMessage)
	event.Final = true
	if err := write(ctx, event); err != nil {
		return fmt.Errorf("failed to write failure event: %w", err)
	}
	return nil
}

func newAgentMessage(reqCtx *a2asrv.RequestContext, text string) *sdka2a.Message {
	msg := sdka2a.NewMessage(sdka2a.MessageRoleAgent, &sdka2a.TextPart{Text: text})
	msg.ID = utils.NewID("msg")
	msg.TaskID = reqCtx.TaskID
	msg.ContextID = reqCtx.ContextID
	return msg
}

var _ a2asrv.AgentExecutor = (*FlowExecutor)(nil)

package a2a

import (
	"context"
	"errors"

	"decisionflow/internal/flow"

	sdka2a "github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
)

// TaskStoreAdapter exposes the bounded TaskManager as an a2asrv.TaskStore.
type TaskStoreAdapter struct {
	manager *flow.TaskManager
}

func NewTaskStoreAdapter(manager *flow.TaskManager) *TaskStoreAdapter {
	return &TaskStoreAdapter{manager: manager}
}

// Save stores a task snapshot. Snapshots for tasks that already reached a
// terminal state are ignored so the stored lifecycle stays monotonic.
func (s *TaskStoreAdapter) Save(ctx context.Context, task *sdka2a.Task) error {
	internalTask := FromSDKTask(task)

	existing, ok := s.manager.Get(internalTask.ID)
	if !ok {
		s.manager.Put(&internalTask)
		return nil
	}
	if existing.Status.State.Terminal() {
		return nil
	}

	if err := s.manager.UpdateStatus(internalTask.ID, internalTask.Status.State, internalTask.Status.Message); err != nil {
		if errors.Is(err, flow.ErrTaskTerminal) {
			return nil
		}
		return err
	}
	if extra := len(internalTask.Artifacts) - len(existing.Artifacts); extra > 0 {
		if err := s.manager.AddArtifacts(internalTask.ID, internalTask.Artifacts[len(existing.Artifacts):]); err != nil {
			return err
		}
	}
	if len(internalTask.History) > 0 {
		if err := s.manager.SetHistory(internalTask.ID, internalTask.History); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a task by id.
func (s *TaskStoreAdapter) Get(ctx context.Context, taskID sdka2a.TaskID) (*sdka2a.Task, error) {
	task, ok := s.manager.Get(string(taskID))
	if !ok {
		return nil, sdka2a.ErrTaskNotFound
	}
	return ToSDKTask(task), nil
}

var _ a2asrv.TaskStore = (*TaskStoreAdapter)(nil)

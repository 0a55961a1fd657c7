package flow

import (
	"errors"
	"sync"
	"time"

	"decisionflow/internal/types"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskTerminal is returned when a status update targets a task that
	// already reached a terminal state. Transitions are monotonic.
	ErrTaskTerminal = errors.New("task already in terminal state")
)

// TaskManager is the in-memory task store. It is bounded: once the cap is
// reached the least recently touched task is evicted.
type TaskManager struct {
	mu    sync.Mutex
	tasks *lru.Cache[string, *types.Task]
}

func NewTaskManager(size int) *TaskManager {
	if size <= 0 {
		size = 1024
	}
	cache, _ := lru.New[string, *types.Task](size)
	return &TaskManager{tasks: cache}
}

func (tm *TaskManager) Put(task *types.Task) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.tasks.Add(task.ID, task)
}

// Get returns a snapshot of the task. The copy is taken under the mutex so
// the stored task never escapes the critical section.
func (tm *TaskManager) Get(id string) (types.Task, bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	task, ok := tm.tasks.Get(id)
	if !ok {
		return types.Task{}, false
	}
	return *task, true
}

// UpdateStatus advances a task's status. Updating a task that already
// reached a terminal state is refused, which makes cancellation after
// completion a no-op at the store level.
func (tm *TaskManager) UpdateStatus(id string, state types.TaskState, msg *types.Message) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	task, ok := tm.tasks.Get(id)
	if !ok {
		return ErrTaskNotFound
	}
	if task.Status.State.Terminal() {
		return ErrTaskTerminal
	}
	task.Status.State = state
	task.Status.Message = msg
	task.Status.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	return nil
}

// AddArtifacts appends artifacts to a task. Artifacts are only produced by
// completed tasks, so a terminal check is not applied here.
func (tm *TaskManager) AddArtifacts(id string, artifacts []types.Artifact) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	task, ok := tm.tasks.Get(id)
	if !ok {
		return ErrTaskNotFound
	}
	task.Artifacts = append(task.Artifacts, artifacts...)
	return nil
}

// SetHistory replaces a task's message history.
func (tm *TaskManager) SetHistory(id string, history []types.Message) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	task, ok := tm.tasks.Get(id)
	if !ok {
		return ErrTaskNotFound
	}
	task.History = history
	return nil
}

func (tm *TaskManager) Len() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.tasks.Len()
}

// List returns tasks filtered by context id and state; empty filters match
// everything.
func (tm *TaskManager) List(contextID string, state types.TaskState) []types.Task {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	result := make([]types.Task, 0)
	for _, key := range tm.tasks.Keys() {
		task, ok := tm.tasks.Peek(key)
		if !ok {
			continue
		}
		if contextID != "" && task.ContextID != contextID {
			continue
		}
		if state != "" && task.Status.State != state {
			continue
		}
		result = append(result, *task)
	}
	return result
}

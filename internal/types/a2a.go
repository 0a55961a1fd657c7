package types

type TaskState string

const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateCanceled      TaskState = "canceled"
	TaskStateFailed        TaskState = "failed"
	TaskStateRejected      TaskState = "rejected"
	TaskStateAuthRequired  TaskState = "auth-required"
	TaskStateUnknown       TaskState = "unknown"
)

// Terminal reports whether no further status transition is allowed.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateFailed, TaskStateCanceled, TaskStateRejected:
		return true
	}
	return false
}

type Message struct {
	Kind      string         `json:"kind"`
	MessageID string         `json:"messageId"`
	Role      string         `json:"role"`
	Parts     []Part         `json:"parts"`
	TaskID    string         `json:"taskId,omitempty"`
	ContextID string         `json:"contextId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type Part struct {
	Kind     string         `json:"kind"`
	Text     string         `json:"text,omitempty"`
	Data     any            `json:"data,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Task struct {
	Kind      string         `json:"kind"`
	ID        string         `json:"id"`
	ContextID string         `json:"contextId"`
	Status    TaskStatus     `json:"status"`
	History   []Message      `json:"history,omitempty"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp"`
}

type Artifact struct {
	ArtifactID  string         `json:"artifactId"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parts       []Part         `json:"parts"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// SendRequest is the message/send envelope a client submits to an agent.
type SendRequest struct {
	RequestID     string            `json:"requestId"`
	Message       Message           `json:"message"`
	Configuration SendConfiguration `json:"configuration"`
}

type SendConfiguration struct {
	AcceptedOutputModes []string `json:"acceptedOutputModes"`
	HistoryLength       int      `json:"historyLength"`
	Blocking            bool     `json:"blocking"`
}

type AgentCard struct {
	ProtocolVersion string            `json:"protocolVersion"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	URL             string            `json:"url"`
	Version         string            `json:"version"`
	Provider        Provider          `json:"provider"`
	Skills          []Skill           `json:"skills"`
	Capabilities    AgentCapabilities `json:"capabilities"`
}

type Provider struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type Skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	InputModes  []string `json:"inputModes,omitempty"`
	OutputModes []string `json:"outputModes,omitempty"`
}

type AgentCapabilities struct {
	Streaming              bool `json:"streaming"`
	PushNotifications      bool `json:"pushNotifications"`
	StateTransitionHistory bool `json:"stateTransitionHistory"`
}

// ExecutionContext carries one incoming request through an agent invocation.
// Deadlines travel on the context passed to Execute.
type ExecutionContext struct {
	TaskID      string
	ContextID   string
	UserMessage Message
}

// ExecutionResult is what an agent invocation produced: the reply message
// and any artifacts to attach to the completed task.
type ExecutionResult struct {
	Reply     Message
	Artifacts []Artifact
}

// UserText concatenates the text parts of a message, joined by a space.
func (m Message) UserText() string {
	text := ""
	for _, p := range m.Parts {
		if p.Kind != "text" || p.Text == "" {
			continue
		}
		if text != "" {
			text += " "
		}
		text += p.Text
	}
	return text
}

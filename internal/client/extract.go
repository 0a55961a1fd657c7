package client

import (
	"encoding/json"
	"errors"
	"strings"

	"decisionflow/internal/types"
)

// taskCompletedFallback is returned for a completed task that carries no
// extractable text anywhere.
const taskCompletedFallback = "Task completed successfully."

// ErrNoTextContent is returned when a payload holds no text to extract.
// Unrecognized payload shapes get this error too; they are not stringified.
var ErrNoTextContent = errors.New("no text content in payload")

type PayloadKind int

const (
	PayloadUnknown PayloadKind = iota
	PayloadMessage
	PayloadTask
)

// Payload is the decoded reply from an agent: a message, a task, or an
// unrecognized shape.
type Payload struct {
	Kind    PayloadKind
	Message *types.Message
	Task    *types.Task
}

func MessagePayload(msg types.Message) Payload {
	return Payload{Kind: PayloadMessage, Message: &msg}
}

func TaskPayload(task types.Task) Payload {
	return Payload{Kind: PayloadTask, Task: &task}
}

// decodePayload classifies raw reply JSON by its kind discriminator.
func decodePayload(raw json.RawMessage) Payload {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Payload{Kind: PayloadUnknown}
	}
	switch probe.Kind {
	case "message":
		var msg types.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			return Payload{Kind: PayloadUnknown}
		}
		return MessagePayload(msg)
	case "task":
		var task types.Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return Payload{Kind: PayloadUnknown}
		}
		return TaskPayload(task)
	default:
		return Payload{Kind: PayloadUnknown}
	}
}

// ExtractText reduces a polymorphic reply payload to a display string.
//
// Resolution order: a message yields its joined text parts; a task yields
// its status message text first, then the first artifact holding a text
// part, then a fixed completion notice. A direct answer in the status
// message wins over artifacts because the status message is the agent's
// final word, while artifacts may be incidental attachments.
func ExtractText(p Payload) (string, error) {
	switch p.Kind {
	case PayloadMessage:
		if p.Message == nil {
			return "", ErrNoTextContent
		}
		return joinTextParts(p.Message.Parts)
	case PayloadTask:
		if p.Task == nil {
			return "", ErrNoTextContent
		}
		if msg := p.Task.Status.Message; msg != nil {
			if text, err := joinTextParts(msg.Parts); err == nil {
				return text, nil
			}
		}
		for _, artifact := range p.Task.Artifacts {
			if text, err := joinTextParts(artifact.Parts); err == nil {
				return text, nil
			}
		}
		return taskCompletedFallback, nil
	default:
		return "", ErrNoTextContent
	}
}

func joinTextParts(parts []types.Part) (string, error) {
	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		if part.Kind == "text" {
			texts = append(texts, part.Text)
		}
	}
	if len(texts) == 0 {
		return "", ErrNoTextContent
	}
	return strings.Join(texts, " "), nil
}

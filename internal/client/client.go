package client

import (
	"context"
	"fmt"
	"time"

	a2aconv "decisionflow/internal/a2a"
	"decisionflow/internal/types"
	"decisionflow/internal/utils"

	sdka2a "github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2aclient"
)

const defaultSendTimeout = 120 * time.Second

// Client talks to Decision Flow agents over the A2A protocol.
type Client struct {
	logger  *utils.Logger
	timeout time.Duration
}

func New(logger *utils.Logger) *Client {
	if logger == nil {
		logger = utils.NewLogger("info")
	}
	return &Client{logger: logger, timeout: defaultSendTimeout}
}

func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// BuildRequest turns user text into a message/send envelope. Request and
// message ids are freshly generated on every call; the construction itself
// cannot fail.
func BuildRequest(text string) types.SendRequest {
	return types.SendRequest{
		RequestID: utils.NewID("req"),
		Message: types.Message{
			Kind:      "message",
			MessageID: utils.NewID("msg"),
			Role:      "user",
			Parts:     []types.Part{{Kind: "text", Text: text, Metadata: map[string]any{}}},
			Metadata:  map[string]any{},
		},
		Configuration: types.SendConfiguration{
			AcceptedOutputModes: []string{"text/plain", "text"},
			HistoryLength:       0,
			Blocking:            false,
		},
	}
}

// Send submits an envelope to the agent at url and returns the decoded
// reply payload.
func (c *Client) Send(ctx context.Context, url string, req types.SendRequest) (Payload, error) {
	c.logger.Debugf("sending request %s to %s", req.RequestID, url)

	a2aClient, err := a2aclient.NewFromEndpoints(ctx, []sdka2a.AgentInterface{
		{URL: url, Transport: sdka2a.TransportProtocolJSONRPC},
	})
	if err != nil {
		return Payload{}, fmt.Errorf("failed to create client for %s: %w", url, err)
	}
	defer func() { _ = a2aClient.Destroy() }()

	params := &sdka2a.MessageSendParams{Message: a2aconv.ToSDKMessage(req.Message)}
	if req.Configuration.HistoryLength > 0 {
		history := req.Configuration.HistoryLength
		params.Config = &sdka2a.MessageSendConfig{HistoryLength: &history}
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := a2aClient.SendMessage(callCtx, params)
	if err != nil {
		return Payload{}, fmt.Errorf("message send failed: %w", err)
	}

	switch resp := result.(type) {
	case *sdka2a.Message:
		return MessagePayload(a2aconv.FromSDKMessage(resp)), nil
	case *sdka2a.Task:
		return TaskPayload(a2aconv.FromSDKTask(resp)), nil
	default:
		return Payload{Kind: PayloadUnknown}, nil
	}
}

// SendText sends user text to the agent at url and extracts the reply text.
// Protocol failures come back as errors; callers log and move on.
func (c *Client) SendText(ctx context.Context, url, text string) (string, error) {
	payload, err := c.Send(ctx, url, BuildRequest(text))
	if err != nil {
		return "", err
	}
	extracted, err := ExtractText(payload)
	if err != nil {
		return "", err
	}
	return extracted, nil
}

package llm

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fxpyramid/chatapp/config"
	"github.com/fxpyramid/chatapp/conversation"
	"github.com/fxpyramid/chatapp/utils"
)

// Client is the completion surface the session controller depends on.
type Client interface {
	// Complete sends the conversation and returns the endpoint's reply.
	// Exactly one POST per call; there is no retry.
	Complete(ctx context.Context, msgs []conversation.Message, cfg GenerationConfig) (Envelope, error)

	// SuggestFilename asks the endpoint to name a history file for this
	// conversation. Failures propagate; the save layer degrades to a
	// generated name.
	SuggestFilename(ctx context.Context, msgs []conversation.Message, cfg GenerationConfig) (string, error)
}

// filenameInstruction is appended verbatim as a trailing system message when
// asking the endpoint to name a history file. It is never persisted into the
// conversation.
const filenameInstruction = "You are a filename generator, based on current conversation, generate a valid " +
	"file name with suffix .json, you must return the filename directly without " +
	"output anything else, this is an automated program."

// HTTPClient is the Client implementation over net/http.
type HTTPClient struct {
	provider Provider
	client   *http.Client
	logger   utils.Logger
}

// New builds the default client for the endpoint configured in cfg.
func New(cfg *config.Config, logger utils.Logger) (Client, error) {
	provider, err := NewProviderRegistry().Get(interactProviderName, cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	return NewWithProvider(provider, cfg.Timeout, logger), nil
}

// NewWithProvider builds a client around an explicit provider.
func NewWithProvider(provider Provider, timeout time.Duration, logger utils.Logger) *HTTPClient {
	return &HTTPClient{
		provider: provider,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (c *HTTPClient) Complete(ctx context.Context, msgs []conversation.Message, cfg GenerationConfig) (Envelope, error) {
	c.logger.Debug("Requesting completion",
		"provider", c.provider.Name(), "messages", len(msgs), "model", cfg.Model)
	return c.post(ctx, msgs, cfg)
}

func (c *HTTPClient) SuggestFilename(ctx context.Context, msgs []conversation.Message, cfg GenerationConfig) (string, error) {
	withInstruction := append(append([]conversation.Message(nil), msgs...), conversation.Message{
		Role:    conversation.RoleSystem,
		Content: filenameInstruction,
	})

	envelope, err := c.post(ctx, withInstruction, cfg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(envelope.Response), nil
}

// post performs the single POST round trip shared by both operations.
func (c *HTTPClient) post(ctx context.Context, msgs []conversation.Message, cfg GenerationConfig) (Envelope, error) {
	reqBody, err := c.provider.PrepareRequest(msgs, cfg)
	if err != nil {
		return Envelope{}, NewClientError(ErrorTypeRequest, "failed to prepare request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.Endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return Envelope{}, NewClientError(ErrorTypeRequest, "failed to create request", err)
	}

	for k, v := range c.provider.Headers() {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Envelope{}, NewClientError(ErrorTypeTransport, "failed to send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Envelope{}, NewClientError(ErrorTypeTransport, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Endpoint error",
			"provider", c.provider.Name(), "status", resp.StatusCode, "body", string(body))
		return Envelope{}, NewStatusError(resp.StatusCode)
	}

	envelope, err := c.provider.ParseResponse(body)
	if err != nil {
		return Envelope{}, NewClientError(ErrorTypeMalformed, "failed to parse response", err)
	}

	c.logger.Debug("Completion received", "cost", envelope.Cost)
	return envelope, nil
}

package llm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxpyramid/chatapp/conversation"
)

const interactProviderName = "interact"

// ErrMissingResponse marks a 200 body without a response field.
var ErrMissingResponse = errors.New("response field missing")

// InteractProvider implements the Provider interface for the interact
// completion endpoint.
type InteractProvider struct {
	endpoint string
}

// NewInteractProvider returns an InteractProvider posting to endpoint.
func NewInteractProvider(endpoint string) Provider {
	return &InteractProvider{
		endpoint: endpoint,
	}
}

func (p *InteractProvider) Name() string {
	return interactProviderName
}

func (p *InteractProvider) Endpoint() string {
	return p.endpoint
}

func (p *InteractProvider) Headers() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
	}
}

// PrepareRequest marshals the conversation plus generation parameters into
// the endpoint's wire shape.
func (p *InteractProvider) PrepareRequest(msgs []conversation.Message, cfg GenerationConfig) ([]byte, error) {
	if msgs == nil {
		msgs = []conversation.Message{}
	}
	return json.Marshal(Request{
		Messages:    msgs,
		Temperature: cfg.Temperature,
		Model:       cfg.Model,
	})
}

// ParseResponse decodes a 200 body. A missing response field is an error;
// a missing cost field defaults to zero.
func (p *InteractProvider) ParseResponse(body []byte) (Envelope, error) {
	var raw struct {
		Response *string `json:"response"`
		Cost     float64 `json:"cost"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope{}, fmt.Errorf("error parsing response: %w", err)
	}
	if raw.Response == nil {
		return Envelope{}, ErrMissingResponse
	}
	return Envelope{
		Response: *raw.Response,
		Cost:     raw.Cost,
	}, nil
}

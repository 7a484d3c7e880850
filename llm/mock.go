package llm

import (
	"encoding/json"

	"github.com/fxpyramid/chatapp/conversation"
)

// MockProvider implements the Provider interface for testing purposes.
type MockProvider struct {
	endpoint   string
	prepareErr error
	parseErr   error
	response   Envelope
}

// NewMockProvider creates a mock provider bound to endpoint.
func NewMockProvider(endpoint string) *MockProvider {
	return &MockProvider{
		endpoint: endpoint,
		response: Envelope{Response: "This is a mock response"},
	}
}

// SetPrepareError makes PrepareRequest fail with err.
func (p *MockProvider) SetPrepareError(err error) {
	p.prepareErr = err
}

// SetParseError makes ParseResponse fail with err.
func (p *MockProvider) SetParseError(err error) {
	p.parseErr = err
}

// SetResponse sets the envelope ParseResponse returns.
func (p *MockProvider) SetResponse(envelope Envelope) {
	p.response = envelope
}

func (p *MockProvider) Name() string {
	return "mock"
}

func (p *MockProvider) Endpoint() string {
	return p.endpoint
}

func (p *MockProvider) Headers() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
	}
}

func (p *MockProvider) PrepareRequest(msgs []conversation.Message, cfg GenerationConfig) ([]byte, error) {
	if p.prepareErr != nil {
		return nil, p.prepareErr
	}
	return json.Marshal(Request{
		Messages:    msgs,
		Temperature: cfg.Temperature,
		Model:       cfg.Model,
	})
}

func (p *MockProvider) ParseResponse(body []byte) (Envelope, error) {
	if p.parseErr != nil {
		return Envelope{}, p.parseErr
	}
	return p.response, nil
}

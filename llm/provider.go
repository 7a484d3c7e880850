// Package llm implements the HTTP completion client for the chat endpoint.
package llm

import (
	"fmt"
	"sync"

	"github.com/fxpyramid/chatapp/conversation"
)

// GenerationConfig carries the per-request generation parameters. It is read
// at request-build time, never stored alongside messages.
type GenerationConfig struct {
	Model       string
	Temperature float64
}

// Request is the JSON body sent to the completion endpoint.
type Request struct {
	Messages    []conversation.Message `json:"messages"`
	Temperature float64                `json:"temperature"`
	Model       string                 `json:"model"`
}

// Envelope is the JSON body of a successful reply. Cost is optional on the
// wire and defaults to zero.
type Envelope struct {
	Response string  `json:"response"`
	Cost     float64 `json:"cost"`
}

// Provider speaks one completion endpoint's dialect.
type Provider interface {
	Name() string
	Endpoint() string
	Headers() map[string]string
	PrepareRequest(msgs []conversation.Message, cfg GenerationConfig) ([]byte, error)
	ParseResponse(body []byte) (Envelope, error)
}

// ProviderConstructor builds a Provider bound to an endpoint URL.
type ProviderConstructor func(endpoint string) Provider

// ProviderRegistry maps provider names to their constructors.
type ProviderRegistry struct {
	providers map[string]ProviderConstructor
	mutex     sync.RWMutex
}

// NewProviderRegistry returns a registry with every known provider
// registered.
func NewProviderRegistry() *ProviderRegistry {
	registry := &ProviderRegistry{
		providers: make(map[string]ProviderConstructor),
	}
	registry.Register(interactProviderName, NewInteractProvider)
	return registry
}

// Register adds or replaces a provider constructor under name.
func (pr *ProviderRegistry) Register(name string, constructor ProviderConstructor) {
	pr.mutex.Lock()
	defer pr.mutex.Unlock()
	pr.providers[name] = constructor
}

// Get builds the named provider bound to endpoint.
func (pr *ProviderRegistry) Get(name, endpoint string) (Provider, error) {
	pr.mutex.RLock()
	constructor, exists := pr.providers[name]
	pr.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}

	return constructor(endpoint), nil
}

// Package chatapp implements a desktop chat client session: an ordered
// conversation log, an HTTP completion client, and a controller that turns
// user input into chat turns, control commands, and history files.
package chatapp

import (
	"errors"
	"fmt"

	"github.com/fxpyramid/chatapp/config"
	"github.com/fxpyramid/chatapp/conversation"
	"github.com/fxpyramid/chatapp/history"
	"github.com/fxpyramid/chatapp/llm"
	"github.com/fxpyramid/chatapp/utils"
)

// Surface is where the session reports conversation lines and status
// messages. Implementations must not block; the session calls Append from
// the goroutine that completes a request as well as from the submitting
// one.
type Surface interface {
	// Append adds one formatted line for the given display role.
	Append(role, content string)
	// Reset clears the surface; used when a loaded history replaces the
	// conversation.
	Reset()
}

// NopSurface discards everything. Useful for headless use of Session.
type NopSurface struct{}

func (NopSurface) Append(role, content string) {}
func (NopSurface) Reset()                      {}

// State reports whether a completion request is in flight.
type State int

const (
	// StateIdle means the session accepts input.
	StateIdle State = iota
	// StateSending means a request is in flight and input is rejected.
	StateSending
)

// Outcome describes how Submit classified one input.
type Outcome int

const (
	// OutcomeIgnored means the input was empty and nothing happened.
	OutcomeIgnored Outcome = iota
	// OutcomeSent means a chat turn was appended and a request dispatched.
	OutcomeSent
	// OutcomeStaged means a message was appended without a request.
	OutcomeStaged
	// OutcomeSaved means a save command ran; its result was reported to
	// the surface.
	OutcomeSaved
	// OutcomeTerminated means the session is done and the host should
	// shut down.
	OutcomeTerminated
)

// ErrBusy is returned while a request is in flight; the caller retries
// after Wait.
var ErrBusy = errors.New("a request is already in flight")

// programRole labels session-authored surface lines, as opposed to
// conversation roles.
const programRole = "program"

// NewSession builds a session from environment configuration and the given
// options, wiring the default HTTP client and history store. The surface
// receives every conversation and status line; pass NopSurface for
// headless use.
func NewSession(surface Surface, opts ...ConfigOption) (*Session, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	config.ApplyOptions(cfg, opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := utils.NewLogger(cfg.LogLevel)
	logger.Debug("Creating session",
		"endpoint", cfg.Endpoint,
		"model", cfg.Model,
		"history_dir", cfg.HistoryDir)

	client, err := llm.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to create completion client", "error", err)
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	store := history.NewStore(cfg.HistoryDir, logger)
	return newSession(cfg, client, store, surface, logger), nil
}

// newSession wires a session from already-built parts.
func newSession(cfg *config.Config, client llm.Client, store *history.Store, surface Surface, logger utils.Logger) *Session {
	counter := conversation.NewCounter(cfg.Model, logger)
	return &Session{
		log:         conversation.NewLog(counter, logger),
		client:      client,
		store:       store,
		surface:     surface,
		logger:      logger,
		state:       StateIdle,
		role:        conversation.Role(cfg.Role),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

package chatapp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fxpyramid/chatapp/config"
	"github.com/fxpyramid/chatapp/conversation"
	"github.com/fxpyramid/chatapp/history"
	"github.com/fxpyramid/chatapp/llm"
	"github.com/fxpyramid/chatapp/utils"
)

// Control tokens recognized as the entire trimmed input.
const (
	saveToken = "~save"
	exitToken = "~exit"
)

// Session owns one conversation for the lifetime of one run. Input arrives
// through Submit and Prepare; everything the user should see goes to the
// Surface. At most one completion request is in flight at a time.
type Session struct {
	log     *conversation.Log
	client  llm.Client
	store   *history.Store
	surface Surface
	logger  utils.Logger

	mu          sync.Mutex
	state       State
	done        chan struct{}
	cost        float64
	role        conversation.Role
	model       string
	temperature float64
}

// Submit classifies one line of input and acts on it: empty input is
// ignored, control tokens run synchronously, and anything else becomes a
// chat turn with the current role, dispatched to the completion endpoint
// off the calling goroutine. While a request is in flight every call
// returns ErrBusy.
//
// OutcomeTerminated tells the caller the session is over; the process exit
// is the caller's decision.
func (s *Session) Submit(ctx context.Context, input string) (Outcome, error) {
	trimmed := strings.TrimSpace(input)

	s.mu.Lock()
	if s.state == StateSending {
		s.mu.Unlock()
		return OutcomeIgnored, ErrBusy
	}

	switch trimmed {
	case "":
		s.mu.Unlock()
		return OutcomeIgnored, nil

	case saveToken:
		s.mu.Unlock()
		if _, err := s.Save(ctx); err != nil {
			s.surface.Append(programRole, fmt.Sprintf("Failed to save the chat history, exception: %s", err))
			return OutcomeSaved, nil
		}
		s.surface.Append(programRole, "(saved)")
		return OutcomeSaved, nil

	case exitToken:
		s.mu.Unlock()
		// The session ends whether or not the save worked.
		if _, err := s.Save(ctx); err != nil {
			s.logger.Debug("Save on exit failed", "error", err)
		}
		return OutcomeTerminated, nil
	}

	role := s.role
	s.state = StateSending
	s.done = make(chan struct{})
	s.mu.Unlock()

	msg := conversation.Message{Role: role, Content: input}
	s.log.Append(msg)
	s.surface.Append(string(msg.Role), msg.Content)

	go s.dispatch(ctx)
	return OutcomeSent, nil
}

// dispatch performs the network round trip for the turn Submit just
// appended. It is the only goroutine running while the state is Sending,
// and it returns the session to Idle on every path.
func (s *Session) dispatch(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.state = StateIdle
		done := s.done
		s.done = nil
		s.mu.Unlock()
		close(done)
	}()

	envelope, err := s.client.Complete(ctx, s.log.Snapshot(), s.generation())
	if err != nil {
		s.logger.Warn("Completion failed", "error", err)
		s.surface.Append(programRole, errorLine(err))
		return
	}

	s.log.Append(conversation.Message{
		Role:    conversation.RoleAssistant,
		Content: envelope.Response,
	})

	s.mu.Lock()
	s.cost += envelope.Cost
	s.mu.Unlock()

	s.surface.Append(string(conversation.RoleAssistant), envelope.Response)
}

// errorLine renders a failed round trip the way the surface shows it. A
// status failure keeps the code visible; everything else surfaces as the
// underlying exception.
func errorLine(err error) string {
	var clientErr *llm.ClientError
	if errors.As(err, &clientErr) && clientErr.Type == llm.ErrorTypeProvider && clientErr.StatusCode != 0 {
		return fmt.Sprintf("Failed to get a response, status code: %d", clientErr.StatusCode)
	}
	return fmt.Sprintf("Failed to get a response, exception: %s", err)
}

// Prepare appends input as a message with the current role without
// contacting the completion endpoint. Used to stage context, such as a
// system prompt, ahead of the next send.
func (s *Session) Prepare(input string) (Outcome, error) {
	s.mu.Lock()
	if s.state == StateSending {
		s.mu.Unlock()
		return OutcomeIgnored, ErrBusy
	}
	role := s.role
	s.mu.Unlock()

	if strings.TrimSpace(input) == "" {
		return OutcomeIgnored, nil
	}

	msg := conversation.Message{Role: role, Content: input}
	s.log.Append(msg)
	s.surface.Append(string(msg.Role), msg.Content)
	return OutcomeStaged, nil
}

// Save persists the conversation snapshot to the history store and returns
// the path written. The filename comes from the completion endpoint; when
// the suggestion fails for any reason a generated unique name is used so
// that saving never depends on the network.
func (s *Session) Save(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.state == StateSending {
		s.mu.Unlock()
		return "", ErrBusy
	}
	s.mu.Unlock()

	now := time.Now()

	var name string
	suggested, err := s.client.SuggestFilename(ctx, s.log.Snapshot(), s.generation())
	if err != nil {
		s.logger.Warn("Filename suggestion failed, using fallback", "error", err)
		name = history.FallbackName(now)
	} else {
		name = history.Filename(now, suggested)
	}

	s.surface.Append(programRole, fmt.Sprintf("Saving to '%s'", filepath.Join(s.store.Dir(), name)))

	return s.store.Save(name, s.log.Snapshot())
}

// Load replaces the conversation with the contents of a history file and
// redraws the surface from scratch.
func (s *Session) Load(path string) error {
	s.mu.Lock()
	if s.state == StateSending {
		s.mu.Unlock()
		return ErrBusy
	}
	s.mu.Unlock()

	msgs, err := s.store.Load(path)
	if err != nil {
		return err
	}

	s.log.Replace(msgs)
	s.surface.Reset()
	for _, msg := range msgs {
		s.surface.Append(string(msg.Role), msg.Content)
	}
	return nil
}

// ExportText writes the conversation to path as plain "role: content"
// lines.
func (s *Session) ExportText(path string) error {
	return s.store.WriteText(path, s.log.Render())
}

// Clear discards the conversation and resets the surface. The running cost
// total is kept; it only ever increases over a session.
func (s *Session) Clear() error {
	s.mu.Lock()
	if s.state == StateSending {
		s.mu.Unlock()
		return ErrBusy
	}
	s.mu.Unlock()

	s.log.Clear()
	s.surface.Reset()
	return nil
}

// SetRole selects the role tagged onto messages appended from now on.
// Prior messages keep their roles.
func (s *Session) SetRole(role string) error {
	parsed, err := conversation.ParseRole(role)
	if err != nil {
		return err
	}
	if parsed != conversation.RoleUser && parsed != conversation.RoleSystem {
		return fmt.Errorf("role must be %q or %q", conversation.RoleUser, conversation.RoleSystem)
	}

	s.mu.Lock()
	s.role = parsed
	s.mu.Unlock()
	return nil
}

// SetModel switches the model used for requests from now on.
func (s *Session) SetModel(model string) error {
	if !slices.Contains(config.SupportedModels, model) {
		return fmt.Errorf("unsupported model: %q", model)
	}

	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
	return nil
}

// SetTemperature adjusts the sampling temperature used for requests from
// now on.
func (s *Session) SetTemperature(temperature float64) error {
	if temperature < 0 || temperature > 2 {
		return fmt.Errorf("temperature %v is outside [0, 2]", temperature)
	}

	s.mu.Lock()
	s.temperature = temperature
	s.mu.Unlock()
	return nil
}

// generation snapshots the request parameters as they stand now.
func (s *Session) generation() llm.GenerationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return llm.GenerationConfig{
		Model:       s.model,
		Temperature: s.temperature,
	}
}

// State reports whether a request is in flight.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TotalCost returns the accumulated cost of every successful turn.
func (s *Session) TotalCost() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cost
}

// TotalTokens estimates the tokens held in the conversation.
func (s *Session) TotalTokens() int {
	return s.log.TotalTokens()
}

// Messages returns a copy of the conversation.
func (s *Session) Messages() []conversation.Message {
	return s.log.Snapshot()
}

// Wait blocks until the in-flight request, if any, has completed.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Package history persists conversation snapshots as JSON files and
// exports them as plain text.
package history

import (
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxpyramid/chatapp/conversation"
	"github.com/fxpyramid/chatapp/utils"
)

// maxNameAttempts bounds the search for an unused filename.
const maxNameAttempts = 1000

// Store reads and writes conversation snapshots under a single directory.
type Store struct {
	dir    string
	logger utils.Logger
}

// NewStore returns a Store rooted at dir. The directory is created lazily
// on the first save.
func NewStore(dir string, logger utils.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logger,
	}
}

// Dir returns the directory snapshots are written under.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes msgs as an indented JSON array under the store directory and
// returns the path actually written. An existing file is never overwritten;
// the name is suffixed with a counter until it is unique.
func (s *Store) Save(name string, msgs []conversation.Message) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}

	if msgs == nil {
		msgs = []conversation.Message{}
	}
	data, err := json.MarshalIndent(msgs, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode history: %w", err)
	}

	path, file, err := s.createUnique(name)
	if err != nil {
		return "", err
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write history file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close history file: %w", err)
	}

	s.logger.Info("Saved conversation", "path", path, "messages", len(msgs))
	return path, nil
}

// createUnique opens a new file for name, appending a counter to the stem
// when the name is already taken.
func (s *Store) createUnique(name string) (string, *os.File, error) {
	stem := strings.TrimSuffix(name, ".json")
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		candidate := name
		if attempt > 0 {
			candidate = fmt.Sprintf("%s_%d.json", stem, attempt+1)
		}
		path := filepath.Join(s.dir, candidate)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return path, file, nil
		}
		if !os.IsExist(err) {
			return "", nil, fmt.Errorf("failed to create history file: %w", err)
		}
	}
	return "", nil, fmt.Errorf("no unused name available for %q", name)
}

// Load reads a history file and returns its messages. The file must hold a
// JSON array of role/content objects with known roles; anything else fails
// with ErrInvalidHistory.
func (s *Store) Load(path string) ([]conversation.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	if err := ValidateHistory(data); err != nil {
		return nil, err
	}

	var msgs []conversation.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHistory, err)
	}

	s.logger.Info("Loaded conversation", "path", path, "messages", len(msgs))
	return msgs, nil
}

// WriteText writes each line from lines to path, one per line. Unlike Save,
// the path is taken as given and an existing file is replaced.
func (s *Store) WriteText(path string, lines iter.Seq[string]) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	for line := range lines {
		if _, err := fmt.Fprintln(file, line); err != nil {
			file.Close()
			return fmt.Errorf("failed to write export file: %w", err)
		}
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	s.logger.Info("Exported conversation", "path", path)
	return nil
}

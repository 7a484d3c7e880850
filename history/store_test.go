package history

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxpyramid/chatapp/conversation"
	"github.com/fxpyramid/chatapp/utils"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), utils.NewMockLogger())
}

func testConversation() []conversation.Message {
	return []conversation.Message{
		{Role: conversation.RoleUser, Content: "Hello"},
		{Role: conversation.RoleAssistant, Content: "Hi there! 你好"},
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	msgs := testConversation()

	path, err := store.Save("2024_03_09_14_05_chat.json", msgs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Dir(), "2024_03_09_14_05_chat.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n    {"), "history files are written indented")
	assert.Contains(t, string(data), "你好", "content must not be escaped away")

	loaded, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, msgs, loaded)
}

func TestStoreSaveEmptyConversation(t *testing.T) {
	store := newTestStore(t)

	path, err := store.Save("empty.json", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	loaded, err := store.Load(path)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStoreSaveDoesNotOverwrite(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save("chat.json", []conversation.Message{
		{Role: conversation.RoleUser, Content: "first"},
	})
	require.NoError(t, err)

	second, err := store.Save("chat.json", []conversation.Message{
		{Role: conversation.RoleUser, Content: "second"},
	})
	require.NoError(t, err)

	third, err := store.Save("chat.json", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(store.Dir(), "chat.json"), first)
	assert.Equal(t, filepath.Join(store.Dir(), "chat_2.json"), second)
	assert.Equal(t, filepath.Join(store.Dir(), "chat_3.json"), third)

	loaded, err := store.Load(first)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "first", loaded[0].Content, "the original file keeps its contents")
}

func TestStoreSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "history")
	store := NewStore(dir, utils.NewMockLogger())

	_, err := store.Save("chat.json", testConversation())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStoreLoadRejectsBadFiles(t *testing.T) {
	store := newTestStore(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := store.Load(filepath.Join(store.Dir(), "nope.json"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidHistory)
	})

	tests := []struct {
		name string
		data string
	}{
		{"not JSON", "{"},
		{"object instead of array", `{"role": "user", "content": "hi"}`},
		{"missing content", `[{"role": "user"}]`},
		{"missing role", `[{"content": "hi"}]`},
		{"unknown role", `[{"role": "program", "content": "hi"}]`},
		{"non-string content", `[{"role": "user", "content": 12}]`},
		{"unexpected field", `[{"role": "user", "content": "hi", "cost": 0.5}]`},
		{"array of strings", `["user: hi"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(store.Dir(), "bad.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644))

			_, err := store.Load(path)
			assert.ErrorIs(t, err, ErrInvalidHistory)
		})
	}
}

func TestValidateHistoryAcceptsAllRoles(t *testing.T) {
	data := `[
        {"role": "system", "content": "You are terse."},
        {"role": "user", "content": "Hello"},
        {"role": "assistant", "content": ""}
    ]`
	assert.NoError(t, ValidateHistory([]byte(data)))
}

func TestWriteText(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(store.Dir(), "chat.txt")

	lines := slices.Values([]string{"user: Hello", "assistant: Hi there!"})
	require.NoError(t, store.WriteText(path, lines))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "user: Hello\nassistant: Hi there!\n", string(data))

	// An existing export is replaced, not appended to.
	require.NoError(t, store.WriteText(path, slices.Values([]string{"user: again"})))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "user: again\n", string(data))
}

func TestTimestamp(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 42, 0, time.UTC)
	assert.Equal(t, "2024_03_09_14_05_", Timestamp(at))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "chat.json", "chat.json"},
		{"suffix added", "my chat", "my chat.json"},
		{"surrounding whitespace", " report.json\n", "report.json"},
		{"path traversal stripped", "../../etc/passwd", "passwd.json"},
		{"unsafe characters replaced", `a:b*c?d`, "a_b_c_d.json"},
		{"control characters replaced", "a\x01b", "a_b.json"},
		{"empty", "", ""},
		{"spaces only", "   ", ""},
		{"dots only", "...", ""},
		{"parent directory", "..", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeCapsLength(t *testing.T) {
	got := Sanitize(strings.Repeat("a", 500))
	assert.Equal(t, strings.Repeat("a", 200)+".json", got)
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

	assert.Equal(t, "2024_03_09_14_05_notes.json", Filename(at, "notes"))
	assert.Equal(t, "2024_03_09_14_05_go_questions.json", Filename(at, "go_questions.json"))
}

func TestFilenameFallsBackOnUnusableSuggestion(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

	got := Filename(at, "  ..  ")
	assert.True(t, strings.HasPrefix(got, "2024_03_09_14_05_"))
	assert.True(t, strings.HasSuffix(got, ".json"))

	id := strings.TrimSuffix(strings.TrimPrefix(got, "2024_03_09_14_05_"), ".json")
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "fallback names embed a UUID")
}

func TestFallbackNameUnique(t *testing.T) {
	at := time.Now()
	assert.NotEqual(t, FallbackName(at), FallbackName(at))
}

package history

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timestampLayout prefixes every history filename with the save minute.
const timestampLayout = "2006_01_02_15_04_"

// maxSuggestedLen caps model-suggested names before sanitizing.
const maxSuggestedLen = 200

// replacer maps characters that are unsafe in filenames on common
// filesystems to an underscore.
var replacer = map[rune]rune{
	'/':  '_',
	'\\': '_',
	':':  '_',
	'*':  '_',
	'?':  '_',
	'"':  '_',
	'<':  '_',
	'>':  '_',
	'|':  '_',
	'\t': '_',
	'\n': '_',
	'\r': '_',
}

// Timestamp formats t as the history filename prefix.
func Timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// Filename builds the history filename for a save at time t from a
// model-suggested name. When the suggestion sanitizes down to nothing it
// falls back to a random name.
func Filename(t time.Time, suggested string) string {
	name := Sanitize(suggested)
	if name == "" {
		return FallbackName(t)
	}
	return Timestamp(t) + name
}

// FallbackName builds the history filename used when no usable suggestion
// is available.
func FallbackName(t time.Time) string {
	return Timestamp(t) + uuid.NewString() + ".json"
}

// Sanitize reduces a suggested filename to a safe basename ending in
// ".json". It returns the empty string when nothing usable remains.
func Sanitize(name string) string {
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) > maxSuggestedLen {
		name = string(runes[:maxSuggestedLen])
	}

	// Drop any directory steering before character cleanup.
	name = filepath.Base(name)

	result := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case replacer[r] != 0:
			result = append(result, replacer[r])
		case r < 32 || r == 127:
			result = append(result, '_')
		default:
			result = append(result, r)
		}
	}

	cleaned := strings.Trim(string(result), ". ")
	if cleaned == "" {
		return ""
	}
	if !strings.HasSuffix(cleaned, ".json") {
		cleaned += ".json"
	}
	return cleaned
}

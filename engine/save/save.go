// Package save implements JSON serialization and deserialization of
// player sessions.
package save

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/nathoo/questline/types"
)

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Game     string   `json:"game"`
	Language string   `json:"language"`
	Chapter  string   `json:"chapter"`
	Attempts int      `json:"attempts"`
	Items    []string `json:"items"`
	Finished bool     `json:"finished"`
	Turn     int      `json:"turn"`
	Log      []string `json:"command_log"`
}

// Save serializes a session to JSON bytes.
func Save(s *types.Session, b *types.Bundle) ([]byte, error) {
	data := SaveData{
		Game:     b.Title,
		Language: s.Language,
		Chapter:  s.Chapter,
		Attempts: s.Attempts,
		Items:    s.Items,
		Finished: s.Finished,
		Turn:     s.Turn,
		Log:      s.Log,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("decoding save: %w", err)
	}
	// Ensure slices are never nil after load.
	if sd.Items == nil {
		sd.Items = []string{}
	}
	if sd.Log == nil {
		sd.Log = []string{}
	}
	return &sd, nil
}

// Check reports whether the save can be resumed against bundle b.
func Check(sd *SaveData, b *types.Bundle) error {
	if _, ok := b.Chapters[sd.Chapter]; !ok {
		return fmt.Errorf("saved chapter %q not found in %s bundle", sd.Chapter, b.Language)
	}
	return nil
}

// ApplySave applies loaded save data onto a session. The session keeps its
// language; saves are portable between translations of the same game.
func ApplySave(s *types.Session, sd *SaveData) {
	s.Chapter = sd.Chapter
	s.Attempts = sd.Attempts
	s.Items = sd.Items
	s.Finished = sd.Finished
	s.Turn = sd.Turn
	s.Log = sd.Log
}

// DefaultName is the slot used when no save name is given.
const DefaultName = "quicksave"

// Path returns the file for save slot name under dir. Names are reduced to
// their base element so a slot cannot escape dir.
func Path(dir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid save name %q", name)
	}
	return filepath.Join(dir, strings.TrimSuffix(base, ".json")+".json"), nil
}

// WriteFile saves the session to slot name under dir, creating dir if
// needed. It returns the path written.
func WriteFile(dir, name string, s *types.Session, b *types.Bundle) (string, error) {
	path, err := Path(dir, name)
	if err != nil {
		return "", err
	}
	data, err := Save(s, b)
	if err != nil {
		return "", fmt.Errorf("encoding save: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating save dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing save: %w", err)
	}
	return path, nil
}

// ReadFile loads slot name from dir.
func ReadFile(dir, name string) (*SaveData, error) {
	path, err := Path(dir, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading save: %w", err)
	}
	return Load(data)
}

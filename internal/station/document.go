package station

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const DocumentVersion = "1.0"

// Document is the file exchange format. The station array is keyed
// "channels" so files exported by earlier versions keep importing.
type Document struct {
	Version   string    `json:"version"`
	Channels  []Station `json:"channels"`
	Favorites []int     `json:"favorites"`
	Recent    []int     `json:"recent"`
}

// Snapshot is the persisted registry layout.
type Snapshot struct {
	Stations  []Station `json:"stations"`
	Favorites []int     `json:"favorites"`
	Recent    []int     `json:"recent"`
}

type ImportMode string

const (
	ImportReplace ImportMode = "replace"
	ImportMerge   ImportMode = "merge"
)

func ParseImportMode(value string) (ImportMode, error) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(value))) {
	case ImportReplace:
		return ImportReplace, nil
	case ImportMerge, "":
		return ImportMerge, nil
	default:
		return "", fmt.Errorf("%w: unknown import mode %q", ErrValidation, value)
	}
}

func ParseDocument(data []byte) (Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	channels, ok := raw["channels"]
	if !ok {
		return Document{}, fmt.Errorf("%w: channels is missing", ErrFormat)
	}
	channels = bytes.TrimSpace(channels)
	if len(channels) == 0 || channels[0] != '[' {
		return Document{}, fmt.Errorf("%w: channels is not a list", ErrFormat)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return doc, nil
}

func (d Document) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

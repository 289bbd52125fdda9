// Package prompts holds the instruction texts sent to the completion service.
// They are embedded JSON files mapping a prompt key to its text.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Prompts used by the persona pipeline.
const (
	PersonaFile    = "persona.json"
	ExtractSystem  = "extract-attributes-system"
	SimulateSystem = "simulate-answer-system"
)

var (
	parsed   = make(map[string]map[string]string)
	parsedMu sync.Mutex
)

// Get returns the prompt stored under key in filename.
func Get(filename, key string) (string, error) {
	prompts, err := load(filename)
	if err != nil {
		return "", err
	}

	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet is Get for prompts that ship with the binary; a miss panics.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// load parses filename once. Blank prompts are rejected so a bad edit to
// the embedded file fails on first use instead of sending an empty
// instruction.
func load(filename string) (map[string]string, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()

	if prompts, ok := parsed[filename]; ok {
		return prompts, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}
	for key, prompt := range prompts {
		if strings.TrimSpace(prompt) == "" {
			return nil, fmt.Errorf("prompt %q in %s is empty", key, filename)
		}
	}

	parsed[filename] = prompts
	return prompts, nil
}

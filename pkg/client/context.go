// Package client implements the HTTP client for the HyperPod platform API.
package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Context represents one platform API context.
type Context struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Token string `json:"token"`
}

// Contexts is the on-disk context file layout.
type Contexts struct {
	Contexts map[string]Context `json:"contexts"`
	Current  string             `json:"current"`
}

var (
	homeDir, _ = os.UserHomeDir()
	// DefaultContextPath locates the platform context file.
	DefaultContextPath = filepath.Join(homeDir, ".hyp", "context")
)

// ReadContext loads the current platform context from path, falling back to
// DefaultContextPath when path is empty.
func ReadContext(path string) (Context, error) {
	if path == "" {
		path = DefaultContextPath
	}

	f, err := os.Open(path)
	if err != nil {
		return Context{}, fmt.Errorf("failed to open context file: %w", err)
	}
	defer f.Close()

	var cs Contexts
	if err := json.NewDecoder(f).Decode(&cs); err != nil {
		return Context{}, fmt.Errorf("failed to decode context file: %w", err)
	}
	if cs.Current == "" {
		return Context{}, fmt.Errorf("no current context in %q", path)
	}
	cur, ok := cs.Contexts[cs.Current]
	if !ok {
		return Context{}, fmt.Errorf("current context %q not found in %q", cs.Current, path)
	}
	return cur, nil
}

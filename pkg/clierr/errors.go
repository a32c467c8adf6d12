// Package clierr defines the user-facing error taxonomy of the hyp CLI.
//
// Every error here terminates the current command with a non-zero exit and a
// clear message. Nothing at this layer is retriable.
package clierr

import "fmt"

// UnsupportedVersion is returned when a requested schema version is not in
// the registry of the schema family the invoked command actually uses.
type UnsupportedVersion struct {
	Version string
}

func (e *UnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported schema version: %s", e.Version)
}

// SchemaNotFound is returned when the versioned schema resource does not
// exist for an otherwise valid version string.
type SchemaNotFound struct {
	Family  string
	Version string
}

func (e *SchemaNotFound) Error() string {
	return fmt.Sprintf("could not load schema.json for version %s (looked in %s.v%s)",
		e.Version, e.Family, underscored(e.Version))
}

// EmptyRegistry indicates a schema registry was constructed with no versions.
// This is a programming error but is still surfaced as a command failure.
type EmptyRegistry struct {
	Family string
}

func (e *EmptyRegistry) Error() string {
	if e.Family == "" {
		return "schema registry is empty"
	}
	return fmt.Sprintf("schema registry for %s is empty", e.Family)
}

// CommandUnavailable wraps any failure to resolve a lazily-registered
// command implementation.
type CommandUnavailable struct {
	Group string
	Name  string
	Cause error
}

func (e *CommandUnavailable) Error() string {
	if e.Group == "" {
		return fmt.Sprintf("command unavailable: %s: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("command unavailable: %s %s: %v", e.Group, e.Name, e.Cause)
}

func (e *CommandUnavailable) Unwrap() error { return e.Cause }

// InvalidJSON is returned when the value of a JSON-blob flag fails to parse.
type InvalidJSON struct {
	Flag  string
	Cause error
}

func (e *InvalidJSON) Error() string {
	return fmt.Sprintf("%q must be valid JSON: %v", e.Flag, e.Cause)
}

func (e *InvalidJSON) Unwrap() error { return e.Cause }

// UnknownTemplate is returned when a caller names a template that has no
// schema family mapping.
type UnknownTemplate struct {
	Name string
}

func (e *UnknownTemplate) Error() string {
	return fmt.Sprintf("unknown template name: %s", e.Name)
}

func underscored(version string) string {
	out := make([]byte, len(version))
	for i := 0; i < len(version); i++ {
		if version[i] == '.' {
			out[i] = '_'
		} else {
			out[i] = version[i]
		}
	}
	return string(out)
}

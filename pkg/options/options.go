// Package options synthesizes command-line flags for schema-backed commands
// from versioned JSON schema documents.
//
// A synthesized command carries a fixed set of control and JSON-blob flags
// plus one flag per non-reserved schema property, in the schema's declared
// property order. Flag sorting is disabled so generated help output
// preserves that order.
package options

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/clierr"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/schema"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/util"
)

// Reserved property names never projected into schema-derived flags. They
// are either covered by the fixed JSON-blob flags or consumed internally.
var reservedProperties = map[string]struct{}{
	"version":            {},
	"env":                {},
	"dimensions":         {},
	"resources_limits":   {},
	"resources_requests": {},
}

// jsonFlags are the four fixed flags accepting raw JSON values, available on
// every schema-backed command independent of any schema.
var jsonFlags = []struct {
	property string
	help     string
}{
	{"env", `JSON object of environment variables, e.g. '{"VAR1":"foo","VAR2":"bar"}'`},
	{"dimensions", `JSON object of dimensions, e.g. '{"VAR1":"foo","VAR2":"bar"}'`},
	{"resources_limits", `JSON object of resource limits, e.g. '{"cpu":"2","memory":"4Gi"}'`},
	{"resources_requests", `JSON object of resource requests, e.g. '{"cpu":"1","memory":"2Gi"}'`},
}

// Request carries everything a schema-backed operation needs once flags are
// parsed and the domain object is constructed.
type Request[T any] struct {
	Name      string
	Namespace string
	Version   string
	Domain    T
}

// Config describes one schema-backed command to synthesize.
type Config[T any] struct {
	Use   string
	Short string

	// Family is the schema family identifier governing the flag set.
	Family string
	// Versions maps schema versions to binders producing the domain object.
	Versions map[string]func(values map[string]interface{}) (T, error)

	// Run receives the invocation once flags are parsed and bound.
	Run func(cmd *cobra.Command, req *Request[T]) error

	// Cache and Argv default to schema.Default and os.Args[1:]; tests
	// inject their own.
	Cache *schema.Cache
	Argv  []string
}

// NewCommand compiles cfg into an invocable cobra command.
//
// Schema loading at synthesis time is best effort: when it fails the command
// still carries the control and JSON flags, and the load is re-attempted at
// execution where a failure now fails the command.
func NewCommand[T any](cfg Config[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:          cfg.Use,
		Short:        cfg.Short,
		SilenceUsage: true,
	}

	fs := cmd.Flags()
	fs.SortFlags = false

	fs.String("version", "", "Schema template version, latest when omitted")
	for _, jf := range jsonFlags {
		fs.String(util.FlagName(jf.property), "", jf.help)
	}

	if version, err := cfg.resolveVersion(); err == nil {
		if d, err := cfg.cache().Load(cfg.Family, version); err == nil {
			addSchemaFlags(cmd, d)
		}
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		version, err := cfg.resolveVersion()
		if err != nil {
			return err
		}
		d, err := cfg.cache().Load(cfg.Family, version)
		if err != nil {
			return err
		}
		// When synthesis degraded to the fixed flags, the schema-derived
		// flags were never registered; collectValues skips them.
		values, err := collectValues(fs, d)
		if err != nil {
			return err
		}
		name, _ := values["metadata_name"].(string)
		namespace, _ := values["namespace"].(string)
		delete(values, "metadata_name")
		delete(values, "namespace")
		delete(values, "version")

		binder, ok := cfg.Versions[version]
		if !ok {
			return &clierr.UnsupportedVersion{Version: version}
		}
		domain, err := binder(values)
		if err != nil {
			return err
		}
		return cfg.Run(cmd, &Request[T]{
			Name:      name,
			Namespace: namespace,
			Version:   version,
			Domain:    domain,
		})
	}
	return cmd
}

func (c *Config[T]) cache() *schema.Cache {
	if c.Cache != nil {
		return c.Cache
	}
	return schema.Default
}

func (c *Config[T]) resolveVersion() (string, error) {
	argv := c.Argv
	if argv == nil {
		argv = os.Args[1:]
	}
	return schema.Resolve(c.Versions, c.Family, argv)
}

// addSchemaFlags projects the document's non-reserved properties onto the
// command, in declared order.
func addSchemaFlags(cmd *cobra.Command, doc *schema.Document) {
	fs := cmd.Flags()
	for _, p := range doc.Properties {
		if _, ok := reservedProperties[p.Name]; ok {
			continue
		}

		name := util.FlagName(p.Name)
		help := p.Description
		switch {
		case len(p.Enum) > 0:
			help = fmt.Sprintf("%s (one of %s)", help, strings.Join(p.Enum, "|"))
			fs.String(name, defaultString(p.Default), help)
		case p.Type == "integer":
			fs.Int64(name, defaultInt(p.Default), help)
		case p.Type == "number":
			fs.Float64(name, defaultFloat(p.Default), help)
		case p.Type == "boolean":
			fs.Bool(name, defaultBool(p.Default), help)
		default:
			fs.String(name, defaultString(p.Default), help)
		}

		if doc.IsRequired(p.Name) {
			cmd.MarkFlagRequired(name) //nolint:errcheck
		}
	}
}

// collectValues reads parsed flag values back into a property-keyed map:
// schema-derived flags that were set or carry a default, plus the four fixed
// JSON flags parsed as JSON values.
func collectValues(fs *pflag.FlagSet, doc *schema.Document) (map[string]interface{}, error) {
	values := make(map[string]interface{})

	for i := range doc.Properties {
		p := &doc.Properties[i]
		if _, ok := reservedProperties[p.Name]; ok {
			continue
		}
		name := util.FlagName(p.Name)
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if !f.Changed && !p.HasDefault() {
			continue
		}

		switch {
		case len(p.Enum) > 0:
			v, _ := fs.GetString(name)
			if f.Changed && !containsEnum(p.Enum, v) {
				return nil, fmt.Errorf("invalid value %q for --%s (choose from %s)",
					v, name, strings.Join(p.Enum, ", "))
			}
			values[p.Name] = v
		case p.Type == "integer":
			v, _ := fs.GetInt64(name)
			values[p.Name] = v
		case p.Type == "number":
			v, _ := fs.GetFloat64(name)
			values[p.Name] = v
		case p.Type == "boolean":
			v, _ := fs.GetBool(name)
			values[p.Name] = v
		default:
			v, _ := fs.GetString(name)
			values[p.Name] = v
		}
	}

	for _, jf := range jsonFlags {
		name := util.FlagName(jf.property)
		raw, _ := fs.GetString(name)
		if raw == "" {
			continue
		}
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, &clierr.InvalidJSON{Flag: name, Cause: err}
		}
		values[jf.property] = v
	}
	return values, nil
}

func containsEnum(enum []string, v string) bool {
	for _, e := range enum {
		if e == v {
			return true
		}
	}
	return false
}

func defaultString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}

func defaultInt(v interface{}) int64 {
	if n, ok := v.(json.Number); ok {
		i, _ := n.Int64()
		return i
	}
	return 0
}

func defaultFloat(v interface{}) float64 {
	if n, ok := v.(json.Number); ok {
		f, _ := n.Float64()
		return f
	}
	return 0
}

func defaultBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

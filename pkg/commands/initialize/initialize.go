// Package initialize implements the config.yaml driven workflow: init,
// configure, validate, reset, and the default create path.
package initialize

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/client"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/schema"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates/customendpoint"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates/jumpstartendpoint"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates/pytorchjob"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/util"
)

func init() {
	cobra.EnablePrefixMatching = true
}

// ConfigFile is the per-directory scaffold file the init workflow edits.
const ConfigFile = "config.yaml"

// Config is the scaffold persisted by "hyp init" and consumed by the bare
// "hyp create" invocation.
type Config struct {
	Template  string                 `json:"template"`
	Version   string                 `json:"version"`
	Namespace string                 `json:"namespace,omitempty"`
	Values    map[string]interface{} `json:"values,omitempty"`
}

func configPath(dir string) string {
	return filepath.Join(dir, ConfigFile)
}

func loadConfig(dir string) (*Config, error) {
	raw, err := os.ReadFile(configPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found in %q, run 'hyp init TEMPLATE' first", ConfigFile, dir)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", ConfigFile, err)
	}
	if _, err := templates.FamilyForTemplate(cfg.Template); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func saveConfig(dir string, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath(dir), out, 0644)
}

// latestVersion returns the newest binder version for the template family.
func latestVersion(family string) (string, error) {
	switch family {
	case templates.PyTorchFamily:
		return schema.Latest(pytorchjob.Registry)
	case templates.JumpStartFamily:
		return schema.Latest(jumpstartendpoint.Registry)
	case templates.CustomFamily:
		return schema.Latest(customendpoint.Registry)
	}
	return "", fmt.Errorf("no versions registered for template family %q", family)
}

// NewInitCommand implements "hyp init TEMPLATE".
func NewInitCommand() *cobra.Command {
	var (
		dir     string
		version string
	)
	cmd := &cobra.Command{
		Use:          "init TEMPLATE",
		Short:        "Initialize a template scaffold in the working directory",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			template := args[0]
			family, err := templates.FamilyForTemplate(template)
			if err != nil {
				return err
			}
			if version == "" {
				if version, err = latestVersion(family); err != nil {
					return err
				}
			}
			doc, err := schema.Load(family, version)
			if err != nil {
				return err
			}
			if _, err := os.Stat(configPath(dir)); err == nil {
				return fmt.Errorf("%s already exists in %q, run 'hyp reset' to start over", ConfigFile, dir)
			}
			cfg := &Config{
				Template: template,
				Version:  version,
				Values:   seedValues(doc),
			}
			if err := saveConfig(dir, cfg); err != nil {
				return err
			}
			util.Logger.Infow("initialized scaffold", "template", template, "version", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s for template %q (version %s)\n", ConfigFile, template, version)
			fmt.Fprintln(cmd.OutOrStdout(), "Edit it directly or use 'hyp configure --set key=value', then run 'hyp create'.")
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "directory", ".", "Directory to initialize")
	cmd.Flags().StringVar(&version, "version", "", "Template schema version, latest when empty")
	return cmd
}

// seedValues pre-populates defaults so the scaffold shows every knob.
func seedValues(doc *schema.Document) map[string]interface{} {
	values := map[string]interface{}{}
	for _, p := range doc.Properties {
		if p.HasDefault() {
			values[p.Name] = p.Default
		} else if doc.IsRequired(p.Name) {
			values[p.Name] = nil
		}
	}
	return values
}

// NewResetCommand implements "hyp reset".
func NewResetCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:          "reset",
		Short:        "Reset the scaffold values to the template defaults",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			family, err := templates.FamilyForTemplate(cfg.Template)
			if err != nil {
				return err
			}
			doc, err := schema.Load(family, cfg.Version)
			if err != nil {
				return err
			}
			cfg.Values = seedValues(doc)
			if err := saveConfig(dir, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s to the defaults of template %q (version %s)\n", ConfigFile, cfg.Template, cfg.Version)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "directory", ".", "Directory holding the scaffold")
	return cmd
}

// NewConfigureCommand implements "hyp configure".
func NewConfigureCommand() *cobra.Command {
	var (
		dir       string
		namespace string
		sets      []string
	)
	cmd := &cobra.Command{
		Use:          "configure",
		Short:        "Set values in the scaffold",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			family, err := templates.FamilyForTemplate(cfg.Template)
			if err != nil {
				return err
			}
			doc, err := schema.Load(family, cfg.Version)
			if err != nil {
				return err
			}
			if namespace != "" {
				cfg.Namespace = namespace
			}
			for _, kv := range sets {
				key, raw, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid --set %q, expected key=value", kv)
				}
				key = util.PropertyName(key)
				prop := findProperty(doc, key)
				if prop == nil {
					return fmt.Errorf("unknown property %q for template %q (version %s)", key, cfg.Template, cfg.Version)
				}
				value, err := coerceValue(prop, raw)
				if err != nil {
					return err
				}
				if cfg.Values == nil {
					cfg.Values = map[string]interface{}{}
				}
				cfg.Values[key] = value
			}
			if err := saveConfig(dir, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", ConfigFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "directory", ".", "Directory holding the scaffold")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Namespace to submit the resource to")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Property to set as key=value, repeatable")
	return cmd
}

func findProperty(doc *schema.Document, name string) *schema.Property {
	for i := range doc.Properties {
		if doc.Properties[i].Name == name {
			return &doc.Properties[i]
		}
	}
	return nil
}

// coerceValue converts the raw string from --set into the schema type.
func coerceValue(prop *schema.Property, raw string) (interface{}, error) {
	switch prop.Type {
	case "integer":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q for property %q", raw, prop.Name)
		}
		return n, nil
	case "number":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q for property %q", raw, prop.Name)
		}
		return f, nil
	case "boolean":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q for property %q", raw, prop.Name)
		}
		return b, nil
	}
	if len(prop.Enum) > 0 && !util.ContainsString(prop.Enum, raw) {
		return nil, fmt.Errorf("invalid value %q for property %q (choose from %s)", raw, prop.Name, strings.Join(prop.Enum, ", "))
	}
	return raw, nil
}

// validateConfig checks the scaffold against its schema and returns the
// problems found.
func validateConfig(cfg *Config) ([]string, error) {
	family, err := templates.FamilyForTemplate(cfg.Template)
	if err != nil {
		return nil, err
	}
	doc, err := schema.Load(family, cfg.Version)
	if err != nil {
		return nil, err
	}
	var problems []string
	for _, required := range doc.Required {
		v, ok := cfg.Values[required]
		if !ok || v == nil || v == "" {
			problems = append(problems, fmt.Sprintf("required property %q is not set", required))
		}
	}
	for name, v := range cfg.Values {
		prop := findProperty(doc, name)
		if prop == nil {
			problems = append(problems, fmt.Sprintf("unknown property %q", name))
			continue
		}
		if s, ok := v.(string); ok && len(prop.Enum) > 0 && !util.ContainsString(prop.Enum, s) {
			problems = append(problems, fmt.Sprintf("invalid value %q for property %q (choose from %s)", s, name, strings.Join(prop.Enum, ", ")))
		}
	}
	return problems, nil
}

// NewValidateCommand implements "hyp validate".
func NewValidateCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:          "validate",
		Short:        "Validate the scaffold against its template schema",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			problems, err := validateConfig(cfg)
			if err != nil {
				return err
			}
			if len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", p)
				}
				return fmt.Errorf("%s is not valid (%d problem(s))", ConfigFile, len(problems))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid for template %q (version %s)\n", ConfigFile, cfg.Template, cfg.Version)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "directory", ".", "Directory holding the scaffold")
	return cmd
}

// NewDefaultCreateCommand implements the bare "hyp create" invocation. It
// submits the resource described by the scaffold in the working directory.
func NewDefaultCreateCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:          "_default_create",
		Short:        "Create the resource described by the scaffold",
		Hidden:       true,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			problems, err := validateConfig(cfg)
			if err != nil {
				return err
			}
			if len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", p)
				}
				return fmt.Errorf("%s is not valid (%d problem(s)), fix it or run 'hyp validate'", ConfigFile, len(problems))
			}
			return submit(cmd, cfg, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "directory", ".", "Directory holding the scaffold")
	return cmd
}

// submit binds the scaffold values to the family model, renders the resource
// manifest into the run directory, and sends it to the platform. The control
// keys never reach the binder.
func submit(cmd *cobra.Command, cfg *Config, dir string) error {
	family, err := templates.FamilyForTemplate(cfg.Template)
	if err != nil {
		return err
	}
	name, _ := cfg.Values["metadata_name"].(string)
	namespace := cfg.Namespace
	if ns, ok := cfg.Values["namespace"].(string); ok && ns != "" {
		namespace = ns
	}
	values := map[string]interface{}{}
	for k, v := range cfg.Values {
		if k == "metadata_name" || k == "namespace" || k == "version" || v == nil {
			continue
		}
		values[k] = v
	}

	meta := client.ResourceMeta{Name: name, Namespace: namespace, Version: cfg.Version}

	var (
		resource interface{}
		create   func(*client.HTTP) error
	)
	switch family {
	case templates.PyTorchFamily:
		bind, ok := pytorchjob.Registry[cfg.Version]
		if !ok {
			return fmt.Errorf("template %q has no version %s", cfg.Template, cfg.Version)
		}
		spec, err := bind(values)
		if err != nil {
			return err
		}
		res := &client.PyTorchJobResource{ResourceMeta: meta, Spec: spec}
		resource = res
		create = func(cli *client.HTTP) error { return cli.CreatePyTorchJob(cmd.Context(), res) }
	case templates.JumpStartFamily:
		bind, ok := jumpstartendpoint.Registry[cfg.Version]
		if !ok {
			return fmt.Errorf("template %q has no version %s", cfg.Template, cfg.Version)
		}
		spec, err := bind(values)
		if err != nil {
			return err
		}
		res := &client.JumpStartEndpointResource{ResourceMeta: meta, Spec: spec}
		resource = res
		create = func(cli *client.HTTP) error { return cli.CreateJumpStartEndpoint(cmd.Context(), res) }
	case templates.CustomFamily:
		bind, ok := customendpoint.Registry[cfg.Version]
		if !ok {
			return fmt.Errorf("template %q has no version %s", cfg.Template, cfg.Version)
		}
		spec, err := bind(values)
		if err != nil {
			return err
		}
		res := &client.CustomEndpointResource{ResourceMeta: meta, Spec: spec}
		resource = res
		create = func(cli *client.HTTP) error { return cli.CreateCustomEndpoint(cmd.Context(), res) }
	}

	manifest, err := writeRunManifest(dir, cfg.Template, name, resource)
	if err != nil {
		return err
	}
	util.Logger.Infow("rendered run manifest", "path", manifest)

	cli, err := client.NewFromContext("")
	if err != nil {
		return err
	}
	if err := create(cli); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q in namespace %q\n", cfg.Template, name, orDefault(namespace))
	return nil
}

// writeRunManifest renders the submitted resource under runs/ so the
// invocation is reproducible and inspectable after the fact.
func writeRunManifest(dir, template, name string, resource interface{}) (string, error) {
	out, err := yaml.Marshal(resource)
	if err != nil {
		return "", err
	}
	runDir := filepath.Join(dir, "runs")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(runDir, fmt.Sprintf("%s-%s.yaml", template, name))
	if err := os.WriteFile(path, out, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func orDefault(namespace string) string {
	if namespace == "" {
		return "default"
	}
	return namespace
}

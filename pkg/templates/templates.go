// Package templates bundles the versioned JSON schema documents of the
// HyperPod resource template families.
//
// Each family version lives in a sub-resource named by convention
// "<family>.v<version with dots replaced by underscores>" and carries a
// single schema.json document. The documents are read-only, embedded at
// build time, and addressed through Schemas.
package templates

import (
	"embed"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/clierr"
)

// Schema family identifiers.
const (
	PyTorchFamily   = "hyperpod-pytorch-job-template"
	JumpStartFamily = "hyperpod-jumpstart-inference-template"
	CustomFamily    = "hyperpod-custom-inference-template"
)

// Leaf command names bound to each schema family.
const (
	PyTorchCommand   = "hyp-pytorch-job"
	JumpStartCommand = "hyp-jumpstart-endpoint"
	CustomCommand    = "hyp-custom-endpoint"
)

//go:embed schemas
var Schemas embed.FS

// SchemaRoot is the directory inside Schemas that holds the versioned
// sub-resources.
const SchemaRoot = "schemas"

// CommandForFamily maps a schema family to the leaf command that uses it.
// The version resolver applies strict --version validation only when the
// invoked command is the one bound to the family being resolved.
func CommandForFamily(family string) string {
	switch family {
	case PyTorchFamily:
		return PyTorchCommand
	case JumpStartFamily:
		return JumpStartCommand
	case CustomFamily:
		return CustomCommand
	}
	return ""
}

// FamilyForTemplate maps a template name (the leaf command spelling used in
// project config files) to its schema family.
func FamilyForTemplate(template string) (string, error) {
	switch template {
	case PyTorchCommand:
		return PyTorchFamily, nil
	case JumpStartCommand:
		return JumpStartFamily, nil
	case CustomCommand:
		return CustomFamily, nil
	}
	return "", &clierr.UnknownTemplate{Name: template}
}

// Package jumpstartendpoint defines the versioned models of the
// hyperpod-jumpstart-inference-template schema family.
package jumpstartendpoint

import (
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates"
)

// JumpStartEndpoint is the domain object handed to the inference operations
// for JumpStart-sourced models.
type JumpStartEndpoint struct {
	ModelID      string `json:"model_id"`
	ModelVersion string `json:"model_version,omitempty"`
	InstanceType string `json:"instance_type"`
	AcceptEula   bool   `json:"accept_eula,omitempty"`
	EndpointName string `json:"endpoint_name,omitempty"`

	TLSCertificateOutputS3URI string `json:"tls_certificate_output_s3_uri,omitempty"`

	Env        map[string]string `json:"env,omitempty"`
	Dimensions map[string]string `json:"dimensions,omitempty"`
}

// Registry maps schema versions of the family to binders producing the
// domain object from the flag values of one invocation.
var Registry = map[string]func(values map[string]interface{}) (*JumpStartEndpoint, error){
	"1.0": bindV1_0,
}

func bindV1_0(values map[string]interface{}) (*JumpStartEndpoint, error) {
	var ep JumpStartEndpoint
	if err := templates.Decode(values, &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}

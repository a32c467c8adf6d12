// Package customendpoint defines the versioned models of the
// hyperpod-custom-inference-template schema family.
package customendpoint

import (
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates"
)

// CustomEndpoint is the domain object handed to the inference operations
// for customer-provided models and serving containers.
type CustomEndpoint struct {
	ModelName       string      `json:"model_name"`
	ModelSourceType string      `json:"model_source_type"`
	ModelLocation   string      `json:"model_location,omitempty"`
	S3Storage       *S3Storage  `json:"s3_storage,omitempty"`
	FSxStorage      *FSxStorage `json:"fsx_storage,omitempty"`

	ImageURI      string `json:"image_uri"`
	ContainerPort int    `json:"container_port,omitempty"`
	InstanceType  string `json:"instance_type"`

	ModelVolumeMountName string `json:"model_volume_mount_name,omitempty"`
	ModelVolumeMountPath string `json:"model_volume_mount_path,omitempty"`

	MetricsEnabled     bool   `json:"metrics_enabled,omitempty"`
	InvocationEndpoint string `json:"invocation_endpoint,omitempty"`

	Env        map[string]string `json:"env,omitempty"`
	Dimensions map[string]string `json:"dimensions,omitempty"`
	Resources  Resources         `json:"resources,omitempty"`
}

type S3Storage struct {
	BucketName string `json:"bucket_name"`
	Region     string `json:"region,omitempty"`
}

type FSxStorage struct {
	DNSName      string `json:"dns_name,omitempty"`
	FileSystemID string `json:"file_system_id"`
	MountName    string `json:"mount_name,omitempty"`
}

type Resources struct {
	Limits   map[string]string `json:"limits,omitempty"`
	Requests map[string]string `json:"requests,omitempty"`
}

// Registry maps schema versions of the family to binders producing the
// domain object from the flag values of one invocation.
var Registry = map[string]func(values map[string]interface{}) (*CustomEndpoint, error){
	"1.0": bindV1_0,
	"1.1": bindV1_1,
}

type modelV1_0 struct {
	ModelName         string            `json:"model_name"`
	ModelSourceType   string            `json:"model_source_type"`
	ModelLocation     string            `json:"model_location"`
	S3BucketName      string            `json:"s3_bucket_name"`
	S3Region          string            `json:"s3_region"`
	FSxDNSName        string            `json:"fsx_dns_name"`
	FSxFileSystemID   string            `json:"fsx_file_system_id"`
	FSxMountName      string            `json:"fsx_mount_name"`
	ImageURI          string            `json:"image_uri"`
	ContainerPort     int               `json:"container_port"`
	VolumeMountName   string            `json:"model_volume_mount_name"`
	VolumeMountPath   string            `json:"model_volume_mount_path"`
	InstanceType      string            `json:"instance_type"`
	Env               map[string]string `json:"env"`
	Dimensions        map[string]string `json:"dimensions"`
	ResourcesLimits   map[string]string `json:"resources_limits"`
	ResourcesRequests map[string]string `json:"resources_requests"`
}

func (m *modelV1_0) toDomain() *CustomEndpoint {
	ep := &CustomEndpoint{
		ModelName:            m.ModelName,
		ModelSourceType:      m.ModelSourceType,
		ModelLocation:        m.ModelLocation,
		ImageURI:             m.ImageURI,
		ContainerPort:        m.ContainerPort,
		InstanceType:         m.InstanceType,
		ModelVolumeMountName: m.VolumeMountName,
		ModelVolumeMountPath: m.VolumeMountPath,
		Env:                  m.Env,
		Dimensions:           m.Dimensions,
		Resources: Resources{
			Limits:   m.ResourcesLimits,
			Requests: m.ResourcesRequests,
		},
	}
	switch m.ModelSourceType {
	case "s3":
		ep.S3Storage = &S3Storage{
			BucketName: m.S3BucketName,
			Region:     m.S3Region,
		}
	case "fsx":
		ep.FSxStorage = &FSxStorage{
			DNSName:      m.FSxDNSName,
			FileSystemID: m.FSxFileSystemID,
			MountName:    m.FSxMountName,
		}
	}
	return ep
}

func bindV1_0(values map[string]interface{}) (*CustomEndpoint, error) {
	var m modelV1_0
	if err := templates.Decode(values, &m); err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

type modelV1_1 struct {
	modelV1_0

	MetricsEnabled     bool   `json:"metrics_enabled"`
	InvocationEndpoint string `json:"invocation_endpoint"`
}

func bindV1_1(values map[string]interface{}) (*CustomEndpoint, error) {
	var m modelV1_1
	if err := templates.Decode(values, &m); err != nil {
		return nil, err
	}
	ep := m.toDomain()
	ep.MetricsEnabled = m.MetricsEnabled
	ep.InvocationEndpoint = m.InvocationEndpoint
	return ep, nil
}

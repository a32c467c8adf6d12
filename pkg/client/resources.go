package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates/customendpoint"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates/jumpstartendpoint"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates/pytorchjob"
)

// ResourceMeta is common metadata of every platform resource.
type ResourceMeta struct {
	Name      string    `json:"name"`
	Namespace string    `json:"namespace,omitempty"`
	Version   string    `json:"version,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// PyTorchJobResource is the wire form of a training job.
type PyTorchJobResource struct {
	ResourceMeta
	Spec *pytorchjob.PyTorchJob `json:"spec"`
}

// JumpStartEndpointResource is the wire form of a JumpStart endpoint.
type JumpStartEndpointResource struct {
	ResourceMeta
	Spec *jumpstartendpoint.JumpStartEndpoint `json:"spec"`
}

// CustomEndpointResource is the wire form of a custom endpoint.
type CustomEndpointResource struct {
	ResourceMeta
	Spec *customendpoint.CustomEndpoint `json:"spec"`
}

// ClusterStack is the wire form of a cluster CloudFormation stack.
type ClusterStack struct {
	Name      string    `json:"name"`
	Region    string    `json:"region,omitempty"`
	Status    string    `json:"status,omitempty"`
	Template  string    `json:"template,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func nsQuery(namespace string) string {
	if namespace == "" {
		return ""
	}
	return "?namespace=" + url.QueryEscape(namespace)
}

func (h *HTTP) CreatePyTorchJob(ctx context.Context, res *PyTorchJobResource) error {
	_, err := h.postJSON(ctx, "/v1/pytorch-jobs", res)
	return err
}

func (h *HTTP) ListPyTorchJobs(ctx context.Context, namespace string) ([]PyTorchJobResource, error) {
	var out []PyTorchJobResource
	err := h.getJSON(ctx, "/v1/pytorch-jobs"+nsQuery(namespace), &out)
	return out, err
}

func (h *HTTP) GetPyTorchJob(ctx context.Context, namespace, name string) (*PyTorchJobResource, error) {
	var out PyTorchJobResource
	err := h.getJSON(ctx, "/v1/pytorch-jobs/"+url.PathEscape(name)+nsQuery(namespace), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) DeletePyTorchJob(ctx context.Context, namespace, name string) error {
	_, err := h.Request(ctx, http.MethodDelete, "/v1/pytorch-jobs/"+url.PathEscape(name)+nsQuery(namespace), nil)
	return err
}

func (h *HTTP) CreateJumpStartEndpoint(ctx context.Context, res *JumpStartEndpointResource) error {
	_, err := h.postJSON(ctx, "/v1/jumpstart-endpoints", res)
	return err
}

func (h *HTTP) ListJumpStartEndpoints(ctx context.Context, namespace string) ([]JumpStartEndpointResource, error) {
	var out []JumpStartEndpointResource
	err := h.getJSON(ctx, "/v1/jumpstart-endpoints"+nsQuery(namespace), &out)
	return out, err
}

func (h *HTTP) GetJumpStartEndpoint(ctx context.Context, namespace, name string) (*JumpStartEndpointResource, error) {
	var out JumpStartEndpointResource
	err := h.getJSON(ctx, "/v1/jumpstart-endpoints/"+url.PathEscape(name)+nsQuery(namespace), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) DeleteJumpStartEndpoint(ctx context.Context, namespace, name string) error {
	_, err := h.Request(ctx, http.MethodDelete, "/v1/jumpstart-endpoints/"+url.PathEscape(name)+nsQuery(namespace), nil)
	return err
}

func (h *HTTP) CreateCustomEndpoint(ctx context.Context, res *CustomEndpointResource) error {
	_, err := h.postJSON(ctx, "/v1/custom-endpoints", res)
	return err
}

func (h *HTTP) ListCustomEndpoints(ctx context.Context, namespace string) ([]CustomEndpointResource, error) {
	var out []CustomEndpointResource
	err := h.getJSON(ctx, "/v1/custom-endpoints"+nsQuery(namespace), &out)
	return out, err
}

func (h *HTTP) GetCustomEndpoint(ctx context.Context, namespace, name string) (*CustomEndpointResource, error) {
	var out CustomEndpointResource
	err := h.getJSON(ctx, "/v1/custom-endpoints/"+url.PathEscape(name)+nsQuery(namespace), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) DeleteCustomEndpoint(ctx context.Context, namespace, name string) error {
	_, err := h.Request(ctx, http.MethodDelete, "/v1/custom-endpoints/"+url.PathEscape(name)+nsQuery(namespace), nil)
	return err
}

// InvokeEndpoint POSTs body to the invocation URL of an endpoint and
// returns the raw response.
func (h *HTTP) InvokeEndpoint(ctx context.Context, namespace, name string, body []byte) ([]byte, error) {
	path := fmt.Sprintf("/v1/endpoints/%s/%s/invocations", url.PathEscape(orDefault(namespace)), url.PathEscape(name))
	return h.Request(ctx, http.MethodPost, path, body)
}

func (h *HTTP) CreateClusterStack(ctx context.Context, stack *ClusterStack) error {
	_, err := h.postJSON(ctx, "/v1/cluster-stacks", stack)
	return err
}

func (h *HTTP) ListClusterStacks(ctx context.Context) ([]ClusterStack, error) {
	var out []ClusterStack
	err := h.getJSON(ctx, "/v1/cluster-stacks", &out)
	return out, err
}

func (h *HTTP) GetClusterStack(ctx context.Context, name string) (*ClusterStack, error) {
	var out ClusterStack
	err := h.getJSON(ctx, "/v1/cluster-stacks/"+url.PathEscape(name), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) DeleteClusterStack(ctx context.Context, name string) error {
	_, err := h.Request(ctx, http.MethodDelete, "/v1/cluster-stacks/"+url.PathEscape(name), nil)
	return err
}

// UpdateCluster patches mutable fields of a cluster configuration.
func (h *HTTP) UpdateCluster(ctx context.Context, name string, patch map[string]interface{}) error {
	data, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	_, err = h.Request(ctx, http.MethodPatch, "/v1/clusters/"+url.PathEscape(name), data)
	return err
}

func orDefault(namespace string) string {
	if namespace == "" {
		return "default"
	}
	return namespace
}

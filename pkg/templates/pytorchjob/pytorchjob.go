// Package pytorchjob defines the versioned models of the
// hyperpod-pytorch-job-template schema family and their conversion to the
// PyTorchJob domain object.
package pytorchjob

import (
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates"
)

// PyTorchJob is the domain object handed to the training operations. Name
// and namespace travel separately, so they are not part of the domain.
type PyTorchJob struct {
	Image        string            `json:"image"`
	PullPolicy   string            `json:"pull_policy,omitempty"`
	EntryScript  string            `json:"entry_script,omitempty"`
	ScriptArgs   string            `json:"script_args,omitempty"`
	InstanceType string            `json:"instance_type,omitempty"`
	NodeCount    int               `json:"node_count,omitempty"`
	TasksPerNode int               `json:"tasks_per_node,omitempty"`
	Env          map[string]string `json:"env,omitempty"`
	Resources    Resources         `json:"resources,omitempty"`
	Scheduling   Scheduling        `json:"scheduling,omitempty"`
	MaxRetry     int               `json:"max_retry,omitempty"`

	// Only nodes that passed deep health checks are eligible when set.
	DeepHealthCheckPassedNodesOnly bool `json:"deep_health_check_passed_nodes_only,omitempty"`
}

type Resources struct {
	Limits   map[string]string `json:"limits,omitempty"`
	Requests map[string]string `json:"requests,omitempty"`
}

type Scheduling struct {
	SchedulerType       string `json:"scheduler_type,omitempty"`
	QueueName           string `json:"queue_name,omitempty"`
	Priority            string `json:"priority,omitempty"`
	Accelerators        int    `json:"accelerators,omitempty"`
	AcceleratorsPerNode int    `json:"accelerators_per_node,omitempty"`
	PreferredTopology   string `json:"preferred_topology,omitempty"`
	RequiredTopology    string `json:"required_topology,omitempty"`
}

// Registry maps schema versions of the family to binders producing the
// domain object from the flag values of one invocation.
var Registry = map[string]func(values map[string]interface{}) (*PyTorchJob, error){
	"1.0": bindV1_0,
	"1.1": bindV1_1,
}

type modelV1_0 struct {
	Image             string            `json:"image"`
	PullPolicy        string            `json:"pull_policy"`
	EntryScript       string            `json:"entry_script"`
	ScriptArgs        string            `json:"script_args"`
	InstanceType      string            `json:"instance_type"`
	NodeCount         int               `json:"node_count"`
	TasksPerNode      int               `json:"tasks_per_node"`
	Env               map[string]string `json:"env"`
	ResourcesLimits   map[string]string `json:"resources_limits"`
	ResourcesRequests map[string]string `json:"resources_requests"`
	SchedulerType     string            `json:"scheduler_type"`
	QueueName         string            `json:"queue_name"`
	Priority          string            `json:"priority"`
	MaxRetry          int               `json:"max_retry"`
	DeepHealthCheck   bool              `json:"deep_health_check_passed_nodes_only"`
}

func (m *modelV1_0) toDomain() *PyTorchJob {
	return &PyTorchJob{
		Image:        m.Image,
		PullPolicy:   m.PullPolicy,
		EntryScript:  m.EntryScript,
		ScriptArgs:   m.ScriptArgs,
		InstanceType: m.InstanceType,
		NodeCount:    m.NodeCount,
		TasksPerNode: m.TasksPerNode,
		Env:          m.Env,
		Resources: Resources{
			Limits:   m.ResourcesLimits,
			Requests: m.ResourcesRequests,
		},
		Scheduling: Scheduling{
			SchedulerType: m.SchedulerType,
			QueueName:     m.QueueName,
			Priority:      m.Priority,
		},
		MaxRetry:                       m.MaxRetry,
		DeepHealthCheckPassedNodesOnly: m.DeepHealthCheck,
	}
}

func bindV1_0(values map[string]interface{}) (*PyTorchJob, error) {
	var m modelV1_0
	if err := templates.Decode(values, &m); err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

type modelV1_1 struct {
	modelV1_0

	Accelerators        int    `json:"accelerators"`
	AcceleratorsPerNode int    `json:"accelerators_per_node"`
	PreferredTopology   string `json:"preferred_topology"`
	RequiredTopology    string `json:"required_topology"`
}

func bindV1_1(values map[string]interface{}) (*PyTorchJob, error) {
	var m modelV1_1
	if err := templates.Decode(values, &m); err != nil {
		return nil, err
	}
	job := m.toDomain()
	job.Scheduling.Accelerators = m.Accelerators
	job.Scheduling.AcceleratorsPerNode = m.AcceleratorsPerNode
	job.Scheduling.PreferredTopology = m.PreferredTopology
	job.Scheduling.RequiredTopology = m.RequiredTopology
	return job, nil
}

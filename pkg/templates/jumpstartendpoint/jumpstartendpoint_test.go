package jumpstartendpoint

import "testing"

func TestBindV1_0(t *testing.T) {
	ep, err := Registry["1.0"](map[string]interface{}{
		"model_id":      "meta-vlm-1",
		"model_version": "2.1.0",
		"instance_type": "ml.g5.12xlarge",
		"accept_eula":   true,
		"endpoint_name": "vlm-prod",
		"env":           map[string]interface{}{"LOG_LEVEL": "info"},
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if ep.ModelID != "meta-vlm-1" || ep.InstanceType != "ml.g5.12xlarge" {
		t.Fatalf("endpoint = %+v", ep)
	}
	if !ep.AcceptEula || ep.EndpointName != "vlm-prod" {
		t.Fatalf("endpoint = %+v", ep)
	}
	if ep.Env["LOG_LEVEL"] != "info" {
		t.Fatalf("env = %v", ep.Env)
	}
}

func TestBindIgnoresUnknownValues(t *testing.T) {
	ep, err := Registry["1.0"](map[string]interface{}{
		"model_id":      "meta-vlm-1",
		"instance_type": "ml.g5.12xlarge",
		"someday_maybe": "ignored",
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if ep.ModelID != "meta-vlm-1" {
		t.Fatalf("endpoint = %+v", ep)
	}
}

package customendpoint

import "testing"

func baseValues() map[string]interface{} {
	return map[string]interface{}{
		"model_name":        "llama",
		"model_source_type": "s3",
		"s3_bucket_name":    "models",
		"s3_region":         "us-west-2",
		"image_uri":         "repo/serve:latest",
		"instance_type":     "ml.g5.8xlarge",
		"container_port":    int64(8080),
	}
}

func TestBindS3Source(t *testing.T) {
	ep, err := Registry["1.0"](baseValues())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if ep.S3Storage == nil || ep.S3Storage.BucketName != "models" || ep.S3Storage.Region != "us-west-2" {
		t.Fatalf("s3 storage = %+v", ep.S3Storage)
	}
	if ep.FSxStorage != nil {
		t.Fatalf("fsx storage populated for s3 source: %+v", ep.FSxStorage)
	}
	if ep.ContainerPort != 8080 {
		t.Fatalf("endpoint = %+v", ep)
	}
}

func TestBindFSxSource(t *testing.T) {
	values := baseValues()
	values["model_source_type"] = "fsx"
	values["fsx_file_system_id"] = "fs-1234"
	values["fsx_mount_name"] = "models"

	ep, err := Registry["1.0"](values)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if ep.FSxStorage == nil || ep.FSxStorage.FileSystemID != "fs-1234" {
		t.Fatalf("fsx storage = %+v", ep.FSxStorage)
	}
	if ep.S3Storage != nil {
		t.Fatalf("s3 storage populated for fsx source: %+v", ep.S3Storage)
	}
}

func TestBindV1_1Additions(t *testing.T) {
	values := baseValues()
	values["metrics_enabled"] = true
	values["invocation_endpoint"] = "invocations"

	ep, err := Registry["1.1"](values)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if !ep.MetricsEnabled || ep.InvocationEndpoint != "invocations" {
		t.Fatalf("endpoint = %+v", ep)
	}

	// The same values bound through v1.0 must ignore the newer fields.
	ep0, err := Registry["1.0"](values)
	if err != nil {
		t.Fatalf("bind v1.0: %v", err)
	}
	if ep0.MetricsEnabled {
		t.Fatal("v1.0 bound a v1.1 field")
	}
}

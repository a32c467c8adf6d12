package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates/pytorchjob"
)

func writeContextFile(t *testing.T, url string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "context")
	cs := Contexts{
		Contexts: map[string]Context{
			"prod": {Name: "prod", URL: url, Token: "tok-123"},
		},
		Current: "prod",
	}
	raw, err := json.Marshal(cs)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadContext(t *testing.T) {
	path := writeContextFile(t, "https://api.example.com")
	mctx, err := ReadContext(path)
	if err != nil {
		t.Fatalf("ReadContext: %v", err)
	}
	if mctx.URL != "https://api.example.com" || mctx.Token != "tok-123" {
		t.Fatalf("context = %+v", mctx)
	}
}

func TestReadContextMissingCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context")
	if err := os.WriteFile(path, []byte(`{"contexts": {}, "current": "gone"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadContext(path); err == nil {
		t.Fatal("missing current context should fail")
	}
}

func TestRequestAuthAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		switch r.URL.Path {
		case "/v1/ok":
			w.Write([]byte(`{"fine": true}`))
		case "/v1/denied":
			http.Error(w, "no such resource", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, "tok-123")
	if _, err := h.Request(context.Background(), http.MethodGet, "/v1/ok", nil); err != nil {
		t.Fatalf("Request: %v", err)
	}

	_, err := h.Request(context.Background(), http.MethodGet, "/v1/denied", nil)
	if err == nil || !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "no such resource") {
		t.Fatalf("got %v, want status error with body", err)
	}
}

func TestPyTorchJobRoundTrip(t *testing.T) {
	var created PyTorchJobResource
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/pytorch-jobs":
			if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
				t.Errorf("decode create: %v", err)
			}
			w.Write([]byte(`{}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/pytorch-jobs":
			if got := r.URL.Query().Get("namespace"); got != "team-a" {
				t.Errorf("namespace query = %q", got)
			}
			json.NewEncoder(w).Encode([]PyTorchJobResource{created})
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/pytorch-jobs/job-1":
			w.Write([]byte(`{}`))
		default:
			http.Error(w, "unexpected route "+r.URL.Path, http.StatusNotFound)
		}
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, "")
	ctx := context.Background()

	res := &PyTorchJobResource{
		ResourceMeta: ResourceMeta{Name: "job-1", Namespace: "team-a", Version: "1.1"},
		Spec:         &pytorchjob.PyTorchJob{Image: "repo/train:latest", NodeCount: 2},
	}
	if err := h.CreatePyTorchJob(ctx, res); err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "job-1" || created.Spec == nil || created.Spec.Image != "repo/train:latest" {
		t.Fatalf("server saw %+v", created)
	}

	jobs, err := h.ListPyTorchJobs(ctx, "team-a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Name != "job-1" {
		t.Fatalf("jobs = %+v", jobs)
	}

	if err := h.DeletePyTorchJob(ctx, "", "job-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestInvokeEndpointRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/endpoints/default/ep-1/invocations" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"generated": "ok"}`))
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, "")
	out, err := h.InvokeEndpoint(context.Background(), "", "ep-1", []byte(`{"inputs": "hi"}`))
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if !strings.Contains(string(out), "generated") {
		t.Fatalf("response = %s", out)
	}
}

package fileflows

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("   ", "", nil); err == nil {
		t.Fatal("expected error for blank server url")
	}

	client, err := NewClient("http://flows.local:19200/", "secret", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.baseURL != "http://flows.local:19200" {
		t.Fatalf("baseURL = %q, want trailing slash trimmed", client.baseURL)
	}
}

func TestPing(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "secret", server.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if gotPath != "/api/status" {
		t.Fatalf("path = %q, want /api/status", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("x-api-key = %q, want secret", gotKey)
	}
}

func TestPingReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "", server.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	pingErr := client.Ping(context.Background())
	if pingErr == nil || !strings.Contains(pingErr.Error(), "503") {
		t.Fatalf("Ping err = %v, want status code in message", pingErr)
	}
}

func TestPingUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(url, "", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	pingErr := client.Ping(context.Background())
	if pingErr == nil || !strings.Contains(pingErr.Error(), "unreachable") {
		t.Fatalf("Ping err = %v, want unreachable", pingErr)
	}
}

func TestSubmit(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/flow/process" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"uid": "job-42"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "", server.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	uid, err := client.Submit(context.Background(), "/media/movies/Heat (1995)/Heat.mkv", "subs-extract")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if uid != "job-42" {
		t.Fatalf("uid = %q, want job-42", uid)
	}
	if gotBody["filePath"] != "/media/movies/Heat (1995)/Heat.mkv" {
		t.Fatalf("filePath = %q", gotBody["filePath"])
	}
	if gotBody["workflowId"] != "subs-extract" {
		t.Fatalf("workflowId = %q", gotBody["workflowId"])
	}
}

func TestSubmitErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "server rejects",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "unknown workflow", http.StatusBadRequest)
			},
			want: "unknown workflow",
		},
		{
			name: "missing uid",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{}`))
			},
			want: "missing uid",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client, err := NewClient(server.URL, "", server.Client())
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			_, submitErr := client.Submit(context.Background(), "/media/a.mkv", "wf")
			if submitErr == nil || !strings.Contains(submitErr.Error(), tc.want) {
				t.Fatalf("Submit err = %v, want %q", submitErr, tc.want)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/flow/status/job-42" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "Processing"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "", server.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	status, err := client.Status(context.Background(), "job-42")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != JobProcessing {
		t.Fatalf("status = %q, want %q", status, JobProcessing)
	}
}

func TestStatusServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such job", http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "", server.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, statusErr := client.Status(context.Background(), "gone"); statusErr == nil {
		t.Fatal("expected error for 404 status")
	}
}

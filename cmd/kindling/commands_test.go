package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestQuestionsRequest_RoundTrip(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /v1/questions": `{"summary":{"commonalities":["jazz"],"complements":[],"context_notes":""},"questions":[],"top_picks":[]}`,
	})

	client := ts.client()

	req := map[string]any{
		"self_handle":  "me",
		"other_handle": "ben",
		"context":      map[string]any{"noise_level": 2},
	}

	resp, err := client.post(ctx, "/v1/questions", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]any
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	r := ts.requests[0]
	if r.Method != "POST" || r.Path != "/v1/questions" {
		t.Errorf("request = %s %s, want POST /v1/questions", r.Method, r.Path)
	}
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["self_handle"] != "me" {
		t.Errorf("body.self_handle = %v, want me", body["self_handle"])
	}
}

func TestDecodeJSON_ServerError(t *testing.T) {
	ts := newTestServer(t, nil)
	client := ts.client()

	resp, err := client.get(ctx, "/v1/profiles/missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out any
	err = decodeJSON(resp, &out)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %v, want mention of 404", err)
	}
}

func TestGenerateCommand_RequiresSelf(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"generate"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error when no profile source is given")
	}
	if !strings.Contains(err.Error(), "--self") {
		t.Errorf("error = %v, want mention of --self", err)
	}
}

func TestProfileImport_RequiresExactlyOneSource(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"profile", "import", "ben"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error when neither --pdf nor --url is given")
	}
	if !strings.Contains(err.Error(), "--pdf") {
		t.Errorf("error = %v, want mention of --pdf", err)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("jazz, climbing, ,robotics")
	want := []string{"jazz", "climbing", "robotics"}
	if len(got) != len(want) {
		t.Fatalf("splitList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestColorize(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	if result := colorize(colorGreen, "ok"); strings.Contains(result, "\033") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}

	noColor = false
	if result := colorize(colorGreen, "ok"); !strings.Contains(result, "\033") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

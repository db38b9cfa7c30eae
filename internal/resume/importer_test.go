package resume

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kindlingapp/kindling/internal/engine"
)

func TestHTMLToText(t *testing.T) {
	page := `<html><head><style>body{color:red}</style><script>alert(1)</script></head>
	<body><h1>Iris Meyer</h1><p>Founder at <b>Acme</b>.</p></body></html>`

	text, err := htmlToText(strings.NewReader(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Iris Meyer", "Founder at", "Acme"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q: %q", want, text)
		}
	}
	for _, banned := range []string{"alert(1)", "color:red"} {
		if strings.Contains(text, banned) {
			t.Errorf("script/style content leaked: %q", text)
		}
	}
}

func TestFetchBio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Iris builds climbing robots.</p></body></html>`))
	}))
	defer srv.Close()

	text, err := FetchBio(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "climbing robots") {
		t.Errorf("text = %q", text)
	}
}

func TestFetchBio_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := FetchBio(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Fatal("expected error for 404")
	}
}

// chatFunc adapts a function to engine.Engine for tests.
type chatFunc func(messages []engine.Message) (string, error)

func (f chatFunc) Chat(_ context.Context, _ string, messages []engine.Message, _ *engine.Schema) (string, error) {
	return f(messages)
}
func (f chatFunc) IsRunning(context.Context) bool               { return true }
func (f chatFunc) ListModels(context.Context) ([]string, error) { return nil, nil }
func (f chatFunc) HasModel(context.Context, string) bool        { return true }
func (f chatFunc) PullModel(context.Context, string, func(engine.PullProgress)) error {
	return nil
}

func TestStructure(t *testing.T) {
	eng := chatFunc(func(messages []engine.Message) (string, error) {
		if len(messages) != 2 || !strings.Contains(messages[0].Content, "Never guess or invent") {
			t.Errorf("extract-only instruction missing: %+v", messages)
		}
		return `{"name": "Iris Meyer", "role": "founder", "interests": ["climbing"]}`, nil
	})

	fields, err := Structure(context.Background(), eng, "llama3.2", "Iris Meyer, founder. Climbs.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.Name != "Iris Meyer" || fields.Role != "founder" {
		t.Errorf("fields = %+v", fields)
	}
	if fields.Company != "" || fields.School != "" {
		t.Errorf("unstated fields must stay empty: %+v", fields)
	}
}

func TestStructure_MalformedResponse(t *testing.T) {
	eng := chatFunc(func([]engine.Message) (string, error) {
		return "here is the profile you asked for", nil
	})
	if _, err := Structure(context.Background(), eng, "llama3.2", "text"); err == nil {
		t.Fatal("unparseable response must error, not guess")
	}
}

func TestStructure_TruncatesLongSource(t *testing.T) {
	var gotLen int
	eng := chatFunc(func(messages []engine.Message) (string, error) {
		gotLen = len(messages[1].Content)
		return `{}`, nil
	})
	long := strings.Repeat("x", maxSourceChars+5000)
	if _, err := Structure(context.Background(), eng, "llama3.2", long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLen != maxSourceChars {
		t.Errorf("source not capped: %d", gotLen)
	}
}

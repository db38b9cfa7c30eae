// Package resume turns source material about a person (a PDF resume or a
// public bio page) into profile fields. Extraction is strict: fields come
// from the source text via an extract-only model instruction, and anything
// the source doesn't state stays empty.
package resume

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"github.com/kindlingapp/kindling/internal/engine"
	"github.com/kindlingapp/kindling/internal/generation"
)

const (
	maxFetchSize   = 5 << 20 // 5MB cap on fetched bio pages
	maxSourceChars = 20000   // source text cap before structuring
	fetchTimeout   = 10 * time.Second
)

// ExtractPDF returns the plain text of a PDF resume.
func ExtractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}
	return text, nil
}

// FetchBio downloads a public bio page and returns its visible text.
func FetchBio(ctx context.Context, client *http.Client, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	text, err := htmlToText(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", url, err)
	}
	if text == "" {
		return "", fmt.Errorf("page %s contains no readable text", url)
	}
	return text, nil
}

// htmlToText walks the document and collects text nodes, skipping script
// and style subtrees.
func htmlToText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(sb.String()), nil
}

// Fields is the structured result of an import. Empty fields mean the
// source did not state them.
type Fields struct {
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Company    string   `json:"company"`
	School     string   `json:"school"`
	Interests  []string `json:"interests"`
	Goals      []string `json:"goals_next_period"`
	HelpOffers []string `json:"help_offers"`
	RecentWin  string   `json:"recent_win"`
}

// Structure extracts profile fields from source text using the generation
// backend under an extract-only instruction. The model is told to leave
// unstated fields empty; a response that is not parseable JSON is an error
// rather than a guessed profile.
func Structure(ctx context.Context, eng engine.Engine, model, source string) (Fields, error) {
	if len(source) > maxSourceChars {
		source = source[:maxSourceChars]
	}

	instruction := "You extract profile fields from resume or bio text.\n" +
		"Rules:\n" +
		"- Copy facts stated in the text. Rephrase only for brevity.\n" +
		"- A field the text does not state stays empty. Never guess or invent.\n" +
		"- interests, goals_next_period, and help_offers are short phrases, not sentences.\n" +
		"Respond with a single JSON object with keys: name, role, company, school, " +
		"interests, goals_next_period, help_offers, recent_win."

	raw, err := eng.Chat(ctx, model, []engine.Message{
		{Role: "system", Content: instruction},
		{Role: "user", Content: source},
	}, fieldsSchema())
	if err != nil {
		return Fields{}, fmt.Errorf("structuring source text: %w", err)
	}

	payload, err := generation.ExtractJSON(raw)
	if err != nil {
		return Fields{}, fmt.Errorf("structuring source text: %w", err)
	}

	var fields Fields
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return Fields{}, fmt.Errorf("decoding extracted fields: %w", err)
	}
	return fields, nil
}

func fieldsSchema() *engine.Schema {
	return &engine.Schema{
		Type: "object",
		Properties: map[string]engine.SchemaProperty{
			"name":              {Type: "string", Description: "The person's name as stated"},
			"role":              {Type: "string", Description: "Current role or title"},
			"company":           {Type: "string", Description: "Current employer"},
			"school":            {Type: "string", Description: "School or university"},
			"interests":         {Type: "array", Description: "Stated interests"},
			"goals_next_period": {Type: "array", Description: "Stated near-term goals"},
			"help_offers":       {Type: "array", Description: "Help the person offers others"},
			"recent_win":        {Type: "string", Description: "A recent accomplishment, if stated"},
		},
	}
}

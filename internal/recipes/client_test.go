package recipes_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Lauda128109319/food-alert/internal/domain/food"
	"github.com/Lauda128109319/food-alert/internal/recipes"
)

func sampleItems() []food.Item {
	exp := time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)

	return []food.Item{
		{ID: "1", Owner: "alice", Name: "牛乳", Qty: 1, DisplayExpiry: exp},
		{ID: "2", Owner: "alice", Name: "卵", Qty: 6, DisplayExpiry: exp},
	}
}

func candidateResponse(text string) string {
	quoted, _ := json.Marshal(text)
	return `{"candidates":[{"content":{"parts":[{"text":` + string(quoted) + `}]}}]}`
}

func TestSuggestSuccess(t *testing.T) {
	var gotPath string
	var gotPrompt string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery

		body, _ := io.ReadAll(r.Body)

		var req struct {
			Contents []struct {
				Role  string `json:"role"`
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}

		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body: %v", err)
		}

		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(candidateResponse("```html\n<h2>レシピ1</h2>\n```")))
	}))

	defer srv.Close()

	c := recipes.NewClient(srv.URL, "gemini-2.5-flash")

	html, err := c.Suggest(context.Background(), "test-key", sampleItems())

	if err != nil {
		t.Fatalf("suggest: %v", err)
	}

	if html != "<h2>レシピ1</h2>" {
		t.Fatalf("html = %q, fences not stripped", html)
	}

	if !strings.Contains(gotPath, "/models/gemini-2.5-flash:generateContent") {
		t.Fatalf("path = %q", gotPath)
	}

	if !strings.Contains(gotPath, "key=test-key") {
		t.Fatalf("api key missing from query: %q", gotPath)
	}

	if !strings.Contains(gotPrompt, "牛乳 1個") || !strings.Contains(gotPrompt, "卵 6個") {
		t.Fatalf("prompt = %q", gotPrompt)
	}

	if !strings.Contains(gotPrompt, "レシピを3つ提案して") {
		t.Fatalf("prompt missing instruction: %q", gotPrompt)
	}
}

func TestSuggestStripsStyleTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(candidateResponse("<style>h2{color:red}</style><h2>焼き飯</h2>")))
	}))

	defer srv.Close()

	c := recipes.NewClient(srv.URL, "")

	html, err := c.Suggest(context.Background(), "k", sampleItems())

	if err != nil {
		t.Fatalf("suggest: %v", err)
	}

	if strings.Contains(html, "<style") {
		t.Fatalf("style tag survived: %q", html)
	}

	if !strings.Contains(html, "<h2>焼き飯</h2>") {
		t.Fatalf("content was lost: %q", html)
	}
}

// The collaborator's own error message must reach the caller untouched so the
// user can see what is wrong with their key.
func TestSuggestSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`))
	}))

	defer srv.Close()

	c := recipes.NewClient(srv.URL, "")

	_, err := c.Suggest(context.Background(), "bad-key", sampleItems())

	if err == nil {
		t.Fatalf("expected error")
	}

	if err.Error() != "API key not valid. Please pass a valid API key." {
		t.Fatalf("err = %q", err.Error())
	}
}

func TestSuggestStatusFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream blew up"))
	}))

	defer srv.Close()

	c := recipes.NewClient(srv.URL, "")

	_, err := c.Suggest(context.Background(), "k", sampleItems())

	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("err = %v", err)
	}
}

func TestSuggestValidation(t *testing.T) {
	c := recipes.NewClient("http://127.0.0.1:0", "")

	if _, err := c.Suggest(context.Background(), "", sampleItems()); err == nil {
		t.Fatalf("missing key should error")
	}

	if _, err := c.Suggest(context.Background(), "k", nil); err == nil {
		t.Fatalf("empty item list should error")
	}
}

func TestSuggestNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))

	defer srv.Close()

	c := recipes.NewClient(srv.URL, "")

	if _, err := c.Suggest(context.Background(), "k", sampleItems()); err == nil {
		t.Fatalf("expected error for empty candidates")
	}
}

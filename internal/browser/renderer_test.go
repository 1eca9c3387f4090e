package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRenderBasicHTML(t *testing.T) {
	article := &Article{
		Title:  "Test Page",
		Byline: "By Author",
		Content: `<h1>Test Page</h1>
<p>Hello world. This is a <strong>bold</strong> and <em>italic</em> test.</p>
<p>Here is a <a href="https://example.com">link to example</a>.</p>
<ul>
<li>Item one</li>
<li>Item two</li>
</ul>
<pre><code>func main() {}</code></pre>
<blockquote>This is a quote</blockquote>`,
		TextContent: "fallback text",
		URL:         "https://example.com/test",
	}

	page := Render(article, 80)
	if page.Content == "" {
		t.Error("Content should not be empty")
	}
	if page.Title != "Test Page" {
		t.Errorf("Expected title 'Test Page', got '%s'", page.Title)
	}
	if page.URL != "https://example.com/test" {
		t.Errorf("Expected URL to carry over, got '%s'", page.URL)
	}
	if !strings.Contains(page.Content, "Item") {
		t.Errorf("Expected list items in content:\n%s", page.Content)
	}
}

func TestRenderEmptyArticle(t *testing.T) {
	page := Render(&Article{TextContent: "some text"}, 0)
	if page == nil {
		t.Fatal("Page should not be nil")
	}
}

func TestMarkdownBlockFlattensContainers(t *testing.T) {
	article := &Article{Content: `<div><section><h2>Nested</h2><p>inside <code>x</code></p></section></div><script>alert(1)</script>`}
	page := Render(article, 60)
	if !strings.Contains(page.Content, "Nested") {
		t.Errorf("Expected nested heading in content:\n%s", page.Content)
	}
	if strings.Contains(page.Content, "alert") {
		t.Errorf("Scripts should be dropped:\n%s", page.Content)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  https://go.dev  ", "https://go.dev"},
		{"http://example.com", "http://example.com"},
		{"golang.org", "https://golang.org"},
		{"tab history", "https://html.duckduckgo.com/html/?q=tab+history"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>Fixture</title></head><body><article>
<h1>Fixture</h1><p>` + strings.Repeat("Readable paragraph text. ", 40) + `</p></article></body></html>`))
	}))
	defer srv.Close()

	result, err := NewFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	article, err := Extract(result)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if article.Title != "Fixture" {
		t.Errorf("Expected title 'Fixture', got '%s'", article.Title)
	}
	if !strings.Contains(article.TextContent, "Readable paragraph") {
		t.Errorf("Expected article text, got %q", article.TextContent)
	}
}

func TestExtractPlainText(t *testing.T) {
	article, err := Extract(&FetchResult{
		FinalURL:    "https://example.com/notes.txt",
		ContentType: "text/plain",
		Body:        []byte("just text"),
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if article.TextContent != "just text" || !strings.HasPrefix(article.Content, "<pre>") {
		t.Errorf("unexpected plain-text article %+v", article)
	}
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := NewFetcher().Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected an error for a 404 response")
	}
}

func TestFetchSniffsMissingContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write([]byte("<!DOCTYPE html><html><head><title>Sniffed</title></head><body><p>hi</p></body></html>"))
	}))
	defer srv.Close()

	result, err := NewFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !IsHTML(result.ContentType) {
		t.Errorf("ContentType = %q, want sniffed HTML", result.ContentType)
	}
	if result.Truncated {
		t.Error("small page marked truncated")
	}
}

func TestExtractPlainTextTitleAndEscaping(t *testing.T) {
	article, err := Extract(&FetchResult{
		FinalURL:    "https://example.com/docs/notes.txt",
		ContentType: "text/plain",
		Body:        []byte("a < b"),
		Truncated:   true,
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if article.Title != "notes.txt" {
		t.Errorf("Title = %q, want notes.txt", article.Title)
	}
	if !strings.Contains(article.Content, "a &lt; b") {
		t.Errorf("Content not escaped: %q", article.Content)
	}
	if !article.Truncated {
		t.Error("Truncated not carried over")
	}
}

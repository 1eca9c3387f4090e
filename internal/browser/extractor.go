package browser

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Article is the readable part of a tab's page.
type Article struct {
	Title       string
	Byline      string
	Content     string // HTML
	TextContent string
	URL         string
	Truncated   bool // body hit the download cap
}

// Extract turns a fetched page into an Article. HTML goes through
// readability; anything else is shown verbatim.
func Extract(page *FetchResult) (*Article, error) {
	u, err := url.Parse(page.FinalURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}

	if !IsHTML(page.ContentType) {
		text := string(page.Body)
		return &Article{
			Title:       fallbackTitle(u),
			Content:     "<pre>" + html.EscapeString(text) + "</pre>",
			TextContent: text,
			URL:         page.FinalURL,
			Truncated:   page.Truncated,
		}, nil
	}

	parsed, err := readability.FromReader(bytes.NewReader(page.Body), u)
	if err != nil {
		return nil, fmt.Errorf("extracting article: %w", err)
	}

	a := &Article{
		Title:       parsed.Title,
		Byline:      parsed.Byline,
		Content:     parsed.Content,
		TextContent: parsed.TextContent,
		URL:         page.FinalURL,
		Truncated:   page.Truncated,
	}
	if a.Title == "" {
		a.Title = documentTitle(page.Body)
	}
	if a.Title == "" {
		a.Title = fallbackTitle(u)
	}
	return a, nil
}

// documentTitle returns the text of the first <title> element.
func documentTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("head title, title").First().Text())
}

// fallbackTitle names a page after its file or, failing that, its host.
func fallbackTitle(u *url.URL) string {
	if base := path.Base(u.Path); base != "/" && base != "." {
		return base
	}
	return u.Host
}

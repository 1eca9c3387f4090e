package browser

import (
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/glamour"
)

// Cached glamour renderer to avoid recreation on every render call.
var (
	cachedRenderer      *glamour.TermRenderer
	cachedRendererWidth int
	rendererMu          sync.Mutex
)

// Page is a tab's page ready to display in the terminal.
type Page struct {
	Title   string
	URL     string
	Content string // styled terminal text
}

// Render converts an Article's HTML content into styled terminal text.
func Render(article *Article, width int) *Page {
	if width <= 0 {
		width = 80
	}
	contentWidth := width - 4
	if contentWidth > 100 {
		contentWidth = 100
	}

	page := &Page{Title: article.Title, URL: article.URL}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		page.Content = article.TextContent
		return page
	}

	var md strings.Builder
	if article.Title != "" {
		md.WriteString("# " + article.Title + "\n\n")
	}
	if article.Byline != "" {
		md.WriteString("*" + article.Byline + "*\n\n")
	}

	doc.Find("body").Children().Each(func(_ int, s *goquery.Selection) {
		md.WriteString(markdownBlock(s))
	})
	if article.Truncated {
		md.WriteString("---\n\n*Page truncated at 10 MB.*\n")
	}

	rendered, err := renderWithGlamour(md.String(), contentWidth)
	if err != nil {
		rendered = md.String()
	}
	page.Content = rendered
	return page
}

func renderWithGlamour(markdown string, width int) (string, error) {
	rendererMu.Lock()
	defer rendererMu.Unlock()

	if cachedRenderer == nil || cachedRendererWidth != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		cachedRenderer = renderer
		cachedRendererWidth = width
	}

	return cachedRenderer.Render(markdown)
}

// markdownBlock converts one block-level element to markdown. Unknown
// containers are flattened into their children.
func markdownBlock(s *goquery.Selection) string {
	switch goquery.NodeName(s) {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(goquery.NodeName(s)[1] - '0')
		return strings.Repeat("#", level) + " " + inlineText(s) + "\n\n"
	case "p":
		if text := inlineText(s); text != "" {
			return text + "\n\n"
		}
		return ""
	case "ul", "ol":
		var sb strings.Builder
		ordered := goquery.NodeName(s) == "ol"
		s.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
			if ordered {
				sb.WriteString(strconv.Itoa(i+1) + ". ")
			} else {
				sb.WriteString("- ")
			}
			sb.WriteString(inlineText(li) + "\n")
		})
		sb.WriteString("\n")
		return sb.String()
	case "pre":
		return "```\n" + strings.TrimRight(s.Text(), "\n") + "\n```\n\n"
	case "blockquote":
		return "> " + inlineText(s) + "\n\n"
	case "hr":
		return "---\n\n"
	case "script", "style", "noscript":
		return ""
	}

	if s.Children().Length() == 0 {
		if text := inlineText(s); text != "" {
			return text + "\n\n"
		}
		return ""
	}
	var sb strings.Builder
	s.Children().Each(func(_ int, c *goquery.Selection) {
		sb.WriteString(markdownBlock(c))
	})
	return sb.String()
}

// inlineText collapses an element's text to a single line, keeping links.
func inlineText(s *goquery.Selection) string {
	var sb strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			sb.WriteString(c.Text())
		case "a":
			text := strings.TrimSpace(c.Text())
			if href, ok := c.Attr("href"); ok && href != "" && text != "" {
				sb.WriteString("[" + text + "](" + href + ")")
			} else {
				sb.WriteString(text)
			}
		case "strong", "b":
			sb.WriteString("**" + strings.TrimSpace(c.Text()) + "**")
		case "em", "i":
			sb.WriteString("*" + strings.TrimSpace(c.Text()) + "*")
		case "code":
			sb.WriteString("`" + c.Text() + "`")
		case "br":
			sb.WriteString(" ")
		default:
			sb.WriteString(inlineText(c))
		}
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

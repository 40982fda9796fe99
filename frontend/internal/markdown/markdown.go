// Package markdown renders building and work order descriptions. Authors
// write plain markdown; the output is sanitized against a fixed allow-list
// before it reaches a template, so descriptions can never inject markup
// outside that list.
package markdown

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/Mecho90/BuildingManagement/shared/logger"
)

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Linkify),
		// Raw HTML passes through the renderer and is stripped by the
		// sanitizer, so the allow-list below is the single gate.
		goldmark.WithRendererOptions(html.WithUnsafe(), html.WithHardWraps()),
	)

	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "pre", "code", "em", "strong", "a", "ul", "ol", "li", "h1", "h2", "h3", "blockquote")
	p.AllowAttrs("href", "title", "rel", "target").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireNoFollowOnLinks(true)

	return &Renderer{md: md, policy: p}
}

// Render converts markdown to sanitized HTML. On a conversion error the raw
// text is degraded to escaped plain text rather than failing the page.
func (r *Renderer) Render(text string) template.HTML {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		logger.Log.Error("markdown conversion failed", "error", err)
		return template.HTML("<p>" + template.HTMLEscapeString(text) + "</p>")
	}

	safe := r.policy.Sanitize(buf.String())
	return template.HTML(strings.TrimSpace(safe))
}

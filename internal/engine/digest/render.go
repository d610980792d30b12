package digest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/nzdigest/nzdigest/internal/engine"
)

type headings struct {
	mainTopic, chronology, keyPoints, insights, conclusion string
}

var sectionHeadings = map[string]headings{
	engine.LangIndonesian: {"Topik Utama", "Kronologi", "Poin-Poin Kunci", "Wawasan & Pembelajaran", "Kesimpulan"},
	engine.LangEnglish:    {"Main Topic", "Chronology", "Key Points", "Insights & Lessons", "Conclusion"},
}

// RenderMarkdown lays a summary out as a Markdown document with headings in
// the summary language. Unknown languages fall back to English headings.
func RenderMarkdown(s *engine.SummaryResult, lang string) string {
	h, ok := sectionHeadings[lang]
	if !ok {
		h = sectionHeadings[engine.LangEnglish]
	}
	var sb strings.Builder

	fmt.Fprintf(&sb, "## %s\n\n%s\n\n", h.mainTopic, s.MainTopic)

	if len(s.Chronology) > 0 {
		fmt.Fprintf(&sb, "## %s\n\n", h.chronology)
		for i, it := range s.Chronology {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, itemLine(it))
		}
		sb.WriteString("\n")
	}
	writeBullets(&sb, h.keyPoints, s.KeyPoints)
	writeBullets(&sb, h.insights, s.Insights)

	fmt.Fprintf(&sb, "## %s\n\n%s\n", h.conclusion, s.Conclusion)
	return sb.String()
}

func writeBullets(sb *strings.Builder, heading string, items []engine.SummaryItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", heading)
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", itemLine(it))
	}
	sb.WriteString("\n")
}

func itemLine(it engine.SummaryItem) string {
	title := strings.TrimSpace(it.Title)
	expl := engine.CollapseSpaces(it.Explanation)
	if title == "" {
		return expl
	}
	return "**" + title + "**: " + expl
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

// RenderHTML converts the Markdown rendering to an HTML fragment. Raw HTML
// coming from the model is escaped, not passed through.
func RenderHTML(s *engine.SummaryResult, lang string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(RenderMarkdown(s, lang)), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

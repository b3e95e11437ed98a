package report

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"io"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"molcure/domain/report"
)

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2em auto; color: #222; }
h2 { border-bottom: 1px solid #ccc; padding-bottom: 0.2em; }
figure { margin: 1em 0; }
figcaption { font-size: 0.85em; color: #555; }
.meta { color: #777; font-size: 0.9em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Run {{.RunID}} &middot; {{.TimeStamp}} &middot; tool version {{.ToolVersion}}</p>
{{range .Sections}}
<h2>{{.Title}}</h2>
{{range .Logs}}{{.}}{{end}}
{{range .Images}}
<figure>
<img {{.Src}} alt="{{.Title}}">
<figcaption>{{.Title}}{{if .Description}} &mdash; {{.Description}}{{end}}</figcaption>
</figure>
{{end}}
{{end}}
</body>
</html>
`

type htmlSection struct {
	Title  string
	Logs   []template.HTML
	Images []htmlImage
}

type htmlImage struct {
	// Src is the complete, pre-built src attribute. Older html/template
	// entity-escapes "+" inside quoted URL attributes, which would corrupt
	// the "image/svg+xml" media type; HTMLAttr keeps the data URI verbatim.
	Src         template.HTMLAttr
	Title       string
	Description string
}

type htmlDoc struct {
	Title       string
	RunID       string
	TimeStamp   string
	ToolVersion string
	Sections    []htmlSection
}

// HTMLBroadcaster renders the report as a single self-contained HTML
// document. Log lines are treated as markdown; images are embedded inline as
// data URIs so the document needs no companion files.
type HTMLBroadcaster struct {
	out io.Writer
}

// NewHTMLBroadcaster creates a broadcaster writing to out.
func NewHTMLBroadcaster(out io.Writer) *HTMLBroadcaster {
	return &HTMLBroadcaster{out: out}
}

// Broadcast implements ports.Broadcaster.
func (b *HTMLBroadcaster) Broadcast(rep *report.Report) error {
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return err
	}

	doc := htmlDoc{
		Title:       rep.Title,
		RunID:       string(rep.RunID),
		TimeStamp:   rep.TimeStamp.String(),
		ToolVersion: rep.ToolVersion,
	}
	for _, section := range rep.Sections {
		hs := htmlSection{Title: section.Title}
		for _, line := range section.Logs {
			hs.Logs = append(hs.Logs, renderMarkdown(line))
		}
		for _, img := range section.Images {
			hs.Images = append(hs.Images, htmlImage{
				Src:         template.HTMLAttr(fmt.Sprintf("src=%q", dataURI(img))),
				Title:       img.Title,
				Description: img.Description,
			})
		}
		doc.Sections = append(doc.Sections, hs)
	}

	return tmpl.Execute(b.out, doc)
}

// renderMarkdown converts one log line to an HTML fragment. A fresh parser
// per line: gomarkdown parsers are single-use.
func renderMarkdown(line string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return template.HTML(markdown.ToHTML([]byte(line), p, renderer))
}

func dataURI(img report.AnnotatedImage) string {
	mime := "image/png"
	if img.Format == "svg" {
		mime = "image/svg+xml"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(img.Image))
}

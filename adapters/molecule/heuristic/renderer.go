package heuristic

import (
	"fmt"
	"strings"

	"molcure/domain/report"
)

const (
	cellWidth  = 200
	cellHeight = 120
	gridCols   = 4
)

// Renderer draws a labeled placeholder grid: one cell per molecule showing
// its SMILES and legend text. It satisfies the report contract without a
// depiction backend.
type Renderer struct{}

// NewRenderer creates a placeholder molecule renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderGrid implements ports.MoleculeRenderer.
func (r *Renderer) RenderGrid(smiles []string, legends []string, title string) (report.AnnotatedImage, error) {
	if len(legends) != len(smiles) {
		return report.AnnotatedImage{}, fmt.Errorf("got %d legends for %d molecules", len(legends), len(smiles))
	}

	rows := (len(smiles) + gridCols - 1) / gridCols
	width := gridCols * cellWidth
	height := rows*cellHeight + 30

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, width, height)
	fmt.Fprintf(&b, `<text x="10" y="20" font-size="14">%s</text>`, escape(title))
	for i, smi := range smiles {
		x := (i % gridCols) * cellWidth
		y := (i/gridCols)*cellHeight + 30
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="gray"/>`, x, y, cellWidth, cellHeight)
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="11">%s</text>`, x+6, y+20, escape(smi))
		for j, line := range strings.Split(legends[i], "\n") {
			fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="10" fill="dimgray">%s</text>`, x+6, y+40+j*14, escape(line))
		}
	}
	b.WriteString(`</svg>`)

	return report.AnnotatedImage{Image: []byte(b.String()), Format: "svg", Title: title}, nil
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

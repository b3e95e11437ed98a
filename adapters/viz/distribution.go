// Package viz renders the small distribution plots embedded in curation
// reports. Plots are emitted as self-contained SVG documents so the report
// needs no plotting backend; a broadcaster can embed them directly.
package viz

import (
	"fmt"
	"math"
	"strings"

	"molcure/domain/dataset"
	"molcure/domain/report"
)

const (
	plotWidth  = 640
	plotHeight = 360
	margin     = 40
	numBuckets = 20
)

// ContinuousDistribution renders a histogram of the values, with optional
// vertical marker lines at the given bin thresholds.
func ContinuousDistribution(values []float64, thresholds []float64, logScale bool, title string) report.AnnotatedImage {
	plotted := values
	if logScale {
		plotted = make([]float64, len(values))
		for i, v := range values {
			if v > 0 {
				plotted[i] = math.Log10(v)
			} else {
				plotted[i] = math.NaN()
			}
		}
	}
	svg := histogramSVG(plotted, nil, logTransform(thresholds, logScale), title)
	return report.AnnotatedImage{Image: []byte(svg), Format: "svg", Title: title}
}

// DistributionWithOutliers renders a histogram with the flagged outliers
// drawn as highlighted markers along the value axis.
func DistributionWithOutliers(values []float64, flags []dataset.Flag, title string) report.AnnotatedImage {
	svg := histogramSVG(values, flags, nil, title)
	return report.AnnotatedImage{
		Image:       []byte(svg),
		Format:      "svg",
		Title:       title,
		Description: "Outliers are highlighted in red.",
	}
}

func logTransform(thresholds []float64, logScale bool) []float64 {
	if !logScale {
		return thresholds
	}
	out := make([]float64, 0, len(thresholds))
	for _, t := range thresholds {
		if t > 0 {
			out = append(out, math.Log10(t))
		}
	}
	return out
}

func histogramSVG(values []float64, flags []dataset.Flag, thresholds []float64, title string) string {
	lo, hi, counts := bucketize(values)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, plotWidth, plotHeight)
	fmt.Fprintf(&b, `<text x="%d" y="20" font-size="14">%s</text>`, margin, escape(title))

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount > 0 {
		innerW := float64(plotWidth - 2*margin)
		innerH := float64(plotHeight - 2*margin)
		barW := innerW / float64(len(counts))
		for i, c := range counts {
			h := innerH * float64(c) / float64(maxCount)
			x := float64(margin) + float64(i)*barW
			y := float64(plotHeight-margin) - h
			fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="steelblue"/>`, x, y, barW-1, h)
		}
		for _, t := range thresholds {
			if t < lo || t > hi {
				continue
			}
			x := float64(margin) + innerW*(t-lo)/(hi-lo)
			fmt.Fprintf(&b, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="black" stroke-dasharray="4"/>`, x, margin, x, plotHeight-margin)
		}
		for i, v := range values {
			if i >= len(flags) || flags[i] != dataset.FlagTrue || math.IsNaN(v) {
				continue
			}
			x := float64(margin) + innerW*(v-lo)/(hi-lo)
			fmt.Fprintf(&b, `<circle cx="%.1f" cy="%d" r="4" fill="red"/>`, x, plotHeight-margin)
		}
	}

	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="black"/>`, margin, plotHeight-margin, plotWidth-margin, plotHeight-margin)
	b.WriteString(`</svg>`)
	return b.String()
}

func bucketize(values []float64) (lo, hi float64, counts []int) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	counts = make([]int, numBuckets)
	if lo > hi {
		return 0, 0, counts
	}
	if lo == hi {
		hi = lo + 1
	}
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		i := int(float64(numBuckets) * (v - lo) / (hi - lo))
		if i >= numBuckets {
			i = numBuckets - 1
		}
		counts[i]++
	}
	return lo, hi, counts
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// Package compositor assembles many independent SVG scenes into one grid
// document. Every cell's identifiers are rewritten with a per-cell prefix
// before merging, so animations keep firing against their own elements and
// never cross cell boundaries. Because prefixing is plain text rewriting,
// a composed grid is itself a valid cell: recursive composition just stacks
// prefixes.
package compositor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/decker502/svgplay/internal/svgid"
)

// Cell is one scene placed into the grid. Width and Height are the scene's
// natural size; zero values fall back to 100x100.
type Cell struct {
	Markup string
	Label  string
	Width  float64
	Height float64
}

// Config controls the grid geometry.
type Config struct {
	Columns             int
	Rows                int // 0 = derive from cell count
	ContainerWidth      float64
	ContainerHeight     float64
	CellMargin          float64
	LabelHeight         float64 // 0 = no labels
	LabelFontSize       float64
	BGColor             string
	PreserveAspectRatio bool
}

// DefaultConfig returns the geometry used by the showcase browser.
func DefaultConfig() Config {
	return Config{
		Columns:             3,
		ContainerWidth:      1280,
		ContainerHeight:     800,
		CellMargin:          10,
		LabelHeight:         20,
		LabelFontSize:       12,
		BGColor:             "#1e1e1e",
		PreserveAspectRatio: true,
	}
}

// Result is a composed grid document.
type Result struct {
	Markup    string
	Width     float64
	Height    float64
	CellCount int
}

// Compose lays the cells out in a grid over a solid background.
func Compose(cells []Cell, cfg Config) Result {
	if cfg.Columns < 1 {
		cfg.Columns = 1
	}

	if len(cells) == 0 {
		var b strings.Builder
		fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
			ftoa(cfg.ContainerWidth), ftoa(cfg.ContainerHeight),
			ftoa(cfg.ContainerWidth), ftoa(cfg.ContainerHeight))
		fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s"/>`, cfg.BGColor)
		b.WriteString(`</svg>`)
		return Result{Markup: b.String(), Width: cfg.ContainerWidth, Height: cfg.ContainerHeight}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%s" height="%s" viewBox="0 0 %s %s">`,
		ftoa(cfg.ContainerWidth), ftoa(cfg.ContainerHeight),
		ftoa(cfg.ContainerWidth), ftoa(cfg.ContainerHeight))
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s"/>`, cfg.BGColor)

	writeCells(&b, cells, cfg)

	b.WriteString(`</svg>`)
	return Result{
		Markup:    b.String(),
		Width:     cfg.ContainerWidth,
		Height:    cfg.ContainerHeight,
		CellCount: len(cells),
	}
}

// ComposeWithBackground lays the cells out over a full SVG scene instead of
// a solid fill. The background's own identifiers get the bg_ prefix so its
// animations survive the merge too, and the composite inherits the
// background's dimensions.
func ComposeWithBackground(cells []Cell, cfg Config, background string) Result {
	if cfg.Columns < 1 {
		cfg.Columns = 1
	}

	bgWidth, bgHeight, ok := ExtractViewBox(background)
	if !ok {
		bgWidth, bgHeight = cfg.ContainerWidth, cfg.ContainerHeight
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%s" height="%s" viewBox="0 0 %s %s">`,
		ftoa(bgWidth), ftoa(bgHeight), ftoa(bgWidth), ftoa(bgHeight))
	b.WriteString(innerContent(svgid.Rewrite(background, "bg_")))

	writeCells(&b, cells, cfg)

	b.WriteString(`</svg>`)
	return Result{
		Markup:    b.String(),
		Width:     bgWidth,
		Height:    bgHeight,
		CellCount: len(cells),
	}
}

func writeCells(b *strings.Builder, cells []Cell, cfg Config) {
	cellWidth, cellHeight := cellLayout(cfg, len(cells))

	for i, cell := range cells {
		if cell.Markup == "" {
			continue
		}

		col := i % cfg.Columns
		row := i / cfg.Columns
		cellX := cfg.CellMargin + float64(col)*(cellWidth+cfg.CellMargin)
		cellY := cfg.CellMargin + float64(row)*(cellHeight+cfg.CellMargin+cfg.LabelHeight)

		prefix := "c" + strconv.Itoa(i) + "_"
		inner := innerContent(svgid.Rewrite(cell.Markup, prefix))

		w, h := cell.Width, cell.Height
		if w <= 0 {
			w = 100
		}
		if h <= 0 {
			h = 100
		}

		fmt.Fprintf(b, `<g transform="%s">`,
			cellTransform(cellX, cellY, cellWidth, cellHeight, w, h, cfg.PreserveAspectRatio))
		fmt.Fprintf(b, `<svg width="%s" height="%s" viewBox="0 0 %s %s">`,
			ftoa(w), ftoa(h), ftoa(w), ftoa(h))
		b.WriteString(inner)
		b.WriteString(`</svg>`)
		b.WriteString(`</g>`)

		if cfg.LabelHeight > 0 && cell.Label != "" {
			labelY := cellY + cellHeight + cfg.LabelHeight*0.7
			fmt.Fprintf(b, `<text x="%s" y="%s" text-anchor="middle" fill="#cccccc" font-family="sans-serif" font-size="%s">%s</text>`,
				ftoa(cellX+cellWidth/2), ftoa(labelY), ftoa(cfg.LabelFontSize), escapeXML(cell.Label))
		}
	}
}

// cellLayout splits the container into equal cells after margins and label
// strips.
func cellLayout(cfg Config, cellCount int) (float64, float64) {
	rows := cfg.Rows
	if rows <= 0 {
		rows = int(math.Ceil(float64(cellCount) / float64(cfg.Columns)))
	}
	if rows < 1 {
		rows = 1
	}

	availableWidth := cfg.ContainerWidth - cfg.CellMargin*float64(cfg.Columns+1)
	availableHeight := cfg.ContainerHeight - cfg.CellMargin*float64(rows+1) - cfg.LabelHeight*float64(rows)
	return availableWidth / float64(cfg.Columns), availableHeight / float64(rows)
}

func cellTransform(cellX, cellY, cellWidth, cellHeight, w, h float64, preserveAspect bool) string {
	scaleX := cellWidth / w
	scaleY := cellHeight / h

	if preserveAspect {
		scale := math.Min(scaleX, scaleY)
		offsetX := cellX + (cellWidth-w*scale)/2
		offsetY := cellY + (cellHeight-h*scale)/2
		return fmt.Sprintf("translate(%s,%s) scale(%s)", ftoa(offsetX), ftoa(offsetY), ftoa(scale))
	}
	return fmt.Sprintf("translate(%s,%s) scale(%s,%s)", ftoa(cellX), ftoa(cellY), ftoa(scaleX), ftoa(scaleY))
}

// ExtractViewBox reads the document's viewBox width and height, falling
// back to the width/height attributes.
func ExtractViewBox(markup string) (float64, float64, bool) {
	if vb, ok := attributeValue(markup, "viewBox"); ok {
		fields := strings.Fields(vb)
		if len(fields) == 4 {
			w, errW := strconv.ParseFloat(fields[2], 64)
			h, errH := strconv.ParseFloat(fields[3], 64)
			if errW == nil && errH == nil {
				return w, h, true
			}
		}
	}

	wStr, okW := attributeValue(markup, "width")
	hStr, okH := attributeValue(markup, "height")
	if okW && okH {
		w, errW := strconv.ParseFloat(strings.TrimSuffix(wStr, "px"), 64)
		h, errH := strconv.ParseFloat(strings.TrimSuffix(hStr, "px"), 64)
		if errW == nil && errH == nil {
			return w, h, true
		}
	}
	return 0, 0, false
}

func attributeValue(markup, name string) (string, bool) {
	for _, quote := range []string{`"`, `'`} {
		search := name + `=` + quote
		pos := 0
		for {
			hit := strings.Index(markup[pos:], search)
			if hit < 0 {
				break
			}
			hit += pos

			// Reject suffix matches like stroke-width when asked for width.
			if hit > 0 {
				prev := markup[hit-1]
				if prev != ' ' && prev != '\t' && prev != '\n' && prev != '\r' {
					pos = hit + 1
					continue
				}
			}

			start := hit + len(search)
			end := strings.Index(markup[start:], quote)
			if end < 0 {
				break
			}
			return markup[start : start+end], true
		}
	}
	return "", false
}

// innerContent strips the outer <svg> element, returning the renderable
// children for embedding.
func innerContent(markup string) string {
	open := strings.Index(markup, "<svg")
	if open < 0 {
		return markup
	}
	tagEnd := strings.IndexByte(markup[open:], '>')
	if tagEnd < 0 {
		return markup
	}
	tagEnd += open
	close := strings.LastIndex(markup, "</svg>")
	if close < 0 || close <= tagEnd {
		return markup
	}
	return markup[tagEnd+1 : close]
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string { return xmlEscaper.Replace(s) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

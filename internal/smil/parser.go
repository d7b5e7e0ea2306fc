package smil

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// ErrMalformed is returned when the input cannot be treated as a document at
// all. Individual unreadable directives are skipped, not fatal.
var ErrMalformed = errors.New("malformed svg document")

const (
	minFrameRate     = 1.0
	maxFrameRate     = 240.0
	defaultFrameRate = 30.0

	syntheticIDPrefix = "_smil_target_"
)

// ParseFile reads an SVG file and parses its animation model.
func ParseFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read svg file '%s': %w", path, err)
	}
	return Parse(string(data))
}

// Parse builds the animation model for a serialized SVG document.
//
// The document is preprocessed first: <symbol> templates become directly
// renderable <g> groups, and <use> elements that carry <animate> children but
// no id receive a deterministic synthetic id so the evaluator can locate them
// later. Directives the parser cannot resolve (missing values, missing
// target, target id absent from the document) are logged and skipped; the
// rest of the model loads normally. A document with zero directives parses
// successfully into a static model with Duration 0.
func Parse(markup string) (*Model, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	processed := Preprocess(markup)

	m := &Model{
		ProcessedMarkup: processed,
		FrameRate:       defaultFrameRate,
		TotalFrames:     1,
	}

	for _, anim := range scanDirectives(processed) {
		if !declaresID(processed, anim.TargetID) {
			log.Printf("[SMIL] Warning: directive targets unknown element '%s', skipping", anim.TargetID)
			continue
		}
		m.Animations = append(m.Animations, anim)
	}

	if len(m.Animations) == 0 {
		return m, nil
	}

	maxFrames := 0
	for i := range m.Animations {
		a := &m.Animations[i]
		if d := a.EffectiveDuration(); d > m.Duration {
			m.Duration = d
		}
		if len(a.Values) > maxFrames {
			maxFrames = len(a.Values)
		}
		if a.Repeat.Indefinite {
			m.indefinite = true
		}
	}

	m.TotalFrames = maxFrames
	if m.Duration > 0 {
		m.FrameRate = clampFrameRate(float64(maxFrames) / m.Duration)
	}

	return m, nil
}

// scanDirectives extracts every readable <animate> directive from the
// processed markup.
func scanDirectives(content string) []Animation {
	var directives []Animation

	pos := 0
	for {
		start := strings.Index(content[pos:], "<animate")
		if start < 0 {
			break
		}
		start += pos

		tagEnd := strings.IndexByte(content[start:], '>')
		if tagEnd < 0 {
			break
		}
		tagEnd += start
		tag := content[start : tagEnd+1]

		anim, ok := parseDirective(content, start, tag)
		if ok {
			directives = append(directives, anim)
		}

		pos = tagEnd + 1
	}

	return directives
}

// parseDirective reads one <animate> tag. The full document and the tag's
// start offset are needed to resolve an implicit target from the enclosing
// element.
func parseDirective(content string, tagStart int, tag string) (Animation, bool) {
	anim := Animation{
		AttributeName: extractAttribute(tag, "attributeName"),
		CalcMode:      parseCalcMode(extractAttribute(tag, "calcMode")),
		Repeat:        parseRepeat(extractAttribute(tag, "repeatCount")),
	}

	anim.Values = splitValues(extractAttribute(tag, "values"))
	if len(anim.Values) == 0 {
		// A from/to pair is a 2-element discrete list.
		from := strings.TrimSpace(extractAttribute(tag, "from"))
		to := strings.TrimSpace(extractAttribute(tag, "to"))
		if from != "" && to != "" {
			anim.Values = []string{from, to}
		}
	}

	anim.Duration = ParseDuration(extractAttribute(tag, "dur"))
	anim.KeyTimes = parseKeyTimes(extractAttribute(tag, "keyTimes"), len(anim.Values))
	anim.TargetID = resolveTarget(content, tagStart, tag)

	if len(anim.Values) == 0 || anim.TargetID == "" || anim.Duration <= 0 {
		log.Printf("[SMIL] Skipping directive: values=%d target='%s' dur=%.3f attr='%s'",
			len(anim.Values), anim.TargetID, anim.Duration, anim.AttributeName)
		return Animation{}, false
	}

	return anim, true
}

// resolveTarget finds the element a directive mutates. An explicit
// href/xlink:href on the animate element wins; otherwise the nearest
// still-open enclosing <use> or <g> with an id is the target.
func resolveTarget(content string, tagStart int, tag string) string {
	href := extractAttribute(tag, "xlink:href")
	if href == "" {
		href = extractAttribute(tag, "href")
	}
	if strings.HasPrefix(href, "#") && len(href) > 1 {
		return href[1:]
	}

	before := content[:tagStart]

	parent := strings.LastIndex(before, "<use")
	if parent >= 0 && strings.Contains(before[parent:], "</use>") {
		// That <use> closed before our directive, so it is not the parent.
		parent = -1
	}
	if parent < 0 {
		parent = strings.LastIndex(before, "<g ")
	}
	if parent >= 0 {
		if id := tagID(before[parent:]); id != "" {
			return id
		}
	}

	// Generic fallback: the nearest preceding still-open element with an id.
	for end := len(before); end > 0; {
		lt := strings.LastIndexByte(before[:end], '<')
		if lt < 0 {
			break
		}
		end = lt
		tag := before[lt:]
		if strings.HasPrefix(tag, "</") || strings.HasPrefix(tag, "<!") || strings.HasPrefix(tag, "<?") {
			continue
		}
		if gt := strings.IndexByte(tag, '>'); gt >= 0 {
			if tag[gt-1] == '/' {
				// Self-closing sibling, not an ancestor.
				continue
			}
			tag = tag[:gt+1]
		}
		if id := extractAttribute(tag, "id"); id != "" {
			return id
		}
	}

	return ""
}

// tagID reads the id of the tag starting the given slice.
func tagID(s string) string {
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return ""
	}
	return extractAttribute(s[:end+1], "id")
}

// Preprocess rewrites the document so animation lookup stays cheap at render
// time: <symbol> templates become <g> groups and animation targets without an
// id get a deterministic synthetic one. This is the only place the parser
// mutates structure.
func Preprocess(markup string) string {
	return injectSyntheticIDs(convertSymbolsToGroups(markup))
}

// convertSymbolsToGroups replaces <symbol> elements with <g>. The rendering
// backend only understands directly renderable groups.
func convertSymbolsToGroups(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	pos := 0
	for {
		start := strings.Index(content[pos:], "<symbol")
		if start < 0 {
			out.WriteString(content[pos:])
			break
		}
		start += pos

		tagEnd := strings.IndexByte(content[start:], '>')
		if tagEnd < 0 {
			out.WriteString(content[pos:])
			break
		}
		tagEnd += start

		out.WriteString(content[pos:start])
		out.WriteString("<g")
		out.WriteString(content[start+len("<symbol") : tagEnd+1])
		pos = tagEnd + 1
	}

	result := out.String()
	return strings.ReplaceAll(result, "</symbol>", "</g>")
}

// injectSyntheticIDs assigns ids to <use> elements that contain <animate>
// children but carry no id of their own. Ids are numbered in document order,
// so repeated parses of the same input agree.
func injectSyntheticIDs(content string) string {
	counter := 0
	pos := 0

	for {
		start := strings.Index(content[pos:], "<use")
		if start < 0 {
			break
		}
		start += pos

		tagEnd := strings.IndexByte(content[start:], '>')
		if tagEnd < 0 {
			break
		}
		tagEnd += start
		tag := content[start : tagEnd+1]

		if hasIDAttribute(tag) || !hasAnimateChild(content, tagEnd) {
			pos = tagEnd + 1
			continue
		}

		syntheticID := fmt.Sprintf("%s%d", syntheticIDPrefix, counter)
		counter++
		insert := ` id="` + syntheticID + `"`
		content = content[:start+len("<use")] + insert + content[start+len("<use"):]
		log.Printf("[SMIL] Injected synthetic id '%s' into <use> element", syntheticID)

		pos = tagEnd + len(insert) + 1
	}

	return content
}

// hasIDAttribute reports whether a serialized tag already declares an id.
func hasIDAttribute(tag string) bool {
	for _, sep := range []string{" id=", "\tid=", "\nid="} {
		if strings.Contains(tag, sep) {
			return true
		}
	}
	return false
}

// hasAnimateChild reports whether an <animate> appears between a <use> tag
// end and the corresponding </use> (or the next <use> for unclosed markup).
func hasAnimateChild(content string, useTagEnd int) bool {
	rest := content[useTagEnd:]
	animate := strings.Index(rest, "<animate")
	if animate < 0 {
		return false
	}
	if closing := strings.Index(rest, "</use>"); closing >= 0 {
		return animate < closing
	}
	if nextUse := strings.Index(rest[1:], "<use"); nextUse >= 0 {
		return animate < nextUse+1
	}
	return true
}

// declaresID reports whether the markup declares the id. A raw substring hit
// is not enough: attributes merely ending in "id" (data-id, grid) must not
// validate a directive target, so the match needs whitespace before it.
func declaresID(markup, id string) bool {
	for _, pattern := range []string{`id="` + id + `"`, `id='` + id + `'`} {
		pos := 0
		for {
			hit := strings.Index(markup[pos:], pattern)
			if hit < 0 {
				break
			}
			hit += pos
			if hit > 0 {
				switch markup[hit-1] {
				case ' ', '\t', '\n', '\r':
					return true
				}
			}
			pos = hit + 1
		}
	}
	return false
}

// extractAttribute pulls one attribute value out of a serialized tag.
// Returns "" when the attribute is absent. Both quote styles are accepted.
func extractAttribute(tag, name string) string {
	for _, quote := range []string{`"`, `'`} {
		search := name + "=" + quote
		start := strings.Index(tag, search)
		if start < 0 {
			continue
		}
		// Reject suffix matches like attributeName when asked for name.
		if start > 0 {
			prev := tag[start-1]
			if prev != ' ' && prev != '\t' && prev != '\n' && prev != '\r' {
				// Search again past the false hit.
				rest := tag[start+1:]
				if v := extractAttribute(rest, name); v != "" {
					return v
				}
				continue
			}
		}
		start += len(search)
		end := strings.Index(tag[start:], quote)
		if end < 0 {
			return ""
		}
		return tag[start : start+end]
	}
	return ""
}

// ParseDuration converts a SMIL clock value ("3s", "500ms", "2min", "1h",
// bare seconds) to seconds. Unreadable input yields 0.
func ParseDuration(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	i := 0
	for i < len(s) && (s[i] == '.' || s[i] == '-' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}
	value, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		log.Printf("[SMIL] Warning: failed to parse duration '%s': %v", s, err)
		return 0
	}

	switch s[i:] {
	case "ms":
		return value / 1000.0
	case "", "s":
		return value
	case "min":
		return value * 60.0
	case "h":
		return value * 3600.0
	}
	return value
}

// parseRepeat reads a repeatCount value: "indefinite", an integer count, or
// empty (one cycle).
func parseRepeat(s string) RepeatPolicy {
	s = strings.TrimSpace(s)
	if s == "indefinite" {
		return RepeatPolicy{Indefinite: true}
	}
	if s == "" {
		return RepeatPolicy{Count: 1}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 1 {
		log.Printf("[SMIL] Warning: unreadable repeatCount '%s', assuming 1", s)
		return RepeatPolicy{Count: 1}
	}
	return RepeatPolicy{Count: int(n)}
}

func parseCalcMode(s string) CalcMode {
	if strings.TrimSpace(s) == "linear" {
		return Linear
	}
	return Discrete
}

// parseKeyTimes reads a keyTimes list and validates it against the value
// count and the SMIL constraints (strictly increasing, first 0, last 1).
// Invalid or absent lists yield nil, meaning uniform spacing.
func parseKeyTimes(s string, valueCount int) []float64 {
	s = strings.TrimSpace(s)
	if s == "" || valueCount == 0 {
		return nil
	}

	parts := strings.Split(s, ";")
	if len(parts) != valueCount {
		log.Printf("[SMIL] Warning: keyTimes count %d does not match %d values, ignoring", len(parts), valueCount)
		return nil
	}

	times := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || v < 0 || v > 1 {
			log.Printf("[SMIL] Warning: unreadable keyTimes entry '%s', ignoring list", part)
			return nil
		}
		times[i] = v
	}

	if times[0] != 0 || times[len(times)-1] != 1 {
		log.Printf("[SMIL] Warning: keyTimes must start at 0 and end at 1, ignoring")
		return nil
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			log.Printf("[SMIL] Warning: keyTimes not strictly increasing, ignoring")
			return nil
		}
	}

	return times
}

// splitValues splits a semicolon-delimited value list, trimming whitespace
// and dropping empty entries.
func splitValues(s string) []string {
	if s == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(s, ";") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func clampFrameRate(fps float64) float64 {
	if fps < minFrameRate {
		return minFrameRate
	}
	if fps > maxFrameRate {
		return maxFrameRate
	}
	return fps
}

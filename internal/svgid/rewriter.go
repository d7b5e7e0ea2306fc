// Package svgid rewrites element identifiers inside serialized SVG markup.
// When several independently authored documents are merged into one scene,
// every id declaration and every reference to an id must be renamed with a
// per-document prefix so the merged document has globally unique identifiers.
//
// The rewrite is a best-effort single-pass text transform: untouched regions
// are preserved byte for byte, and malformed markup never causes a failure.
package svgid

import "strings"

// matchKind tags the recognized reference patterns. Each kind has its own
// rewrite rule so the rules can be tested independently.
type matchKind int

const (
	// matchDeclaration is an id declaration: id="X".
	matchDeclaration matchKind = iota

	// matchURLReference is a fragment reference in a URL value: url(#X).
	// These appear in paint-server, clip, mask, filter and marker attributes
	// as well as inline style sheets.
	matchURLReference

	// matchHrefReference is a direct fragment reference: href="#X" or
	// xlink:href="#X".
	matchHrefReference

	// matchEventTrigger is an animation event trigger: begin="X.click".
	// Only the identifier before the dot is rewritten.
	matchEventTrigger

	// matchValueList is a semicolon-delimited value list containing fragment
	// references: values="#X;#Y".
	matchValueList

	// matchNone means the attribute carries no rewritable reference.
	matchNone
)

// rewriter holds the per-call working state: the prefix and the mapping of
// original identifier to prefixed identifier built during one pass. The map
// guarantees that every reference variant of a given original id receives the
// identical rewritten name within a single Rewrite call.
type rewriter struct {
	prefix string
	seen   map[string]string
}

// Rewrite returns markup with every id declaration and id reference renamed
// to prefix+original. Calling it twice with the same inputs yields identical
// output, and rewriting already-prefixed content with a second prefix
// produces doubly-prefixed identifiers; that is the documented mechanism for
// recursive composite nesting. Empty input is returned unchanged.
func Rewrite(markup, prefix string) string {
	if markup == "" || prefix == "" {
		return markup
	}

	rw := &rewriter{prefix: prefix, seen: make(map[string]string)}

	var out strings.Builder
	out.Grow(len(markup) + len(prefix)*16)

	i := 0
	for i < len(markup) {
		// Attribute assignment: name = "value" (single or double quotes).
		if name, valStart, valEnd, quote, ok := scanAttribute(markup, i); ok {
			value := markup[valStart:valEnd]
			out.WriteString(markup[i : valStart-1]) // includes name, '=', opening quote... minus quote
			out.WriteByte(quote)
			out.WriteString(rw.rewriteValue(name, value))
			out.WriteByte(quote)
			i = valEnd + 1
			continue
		}

		// url(#X) outside attribute values, e.g. inside a <style> sheet.
		if strings.HasPrefix(markup[i:], "url(") {
			rewritten, n := rw.rewriteURLToken(markup[i:])
			out.WriteString(rewritten)
			i += n
			continue
		}

		out.WriteByte(markup[i])
		i++
	}

	return out.String()
}

// classify maps an attribute name and value to the rewrite rule that applies.
func classify(name, value string) matchKind {
	switch {
	case name == "id":
		return matchDeclaration
	case (name == "href" || strings.HasSuffix(name, ":href")) && strings.HasPrefix(value, "#"):
		return matchHrefReference
	case name == "begin" && isEventTrigger(value):
		return matchEventTrigger
	case name == "values" && strings.Contains(value, "#"):
		return matchValueList
	case strings.Contains(value, "url(#"):
		return matchURLReference
	}
	return matchNone
}

// rewriteValue applies the kind-specific rewrite rule to one attribute value.
func (rw *rewriter) rewriteValue(name, value string) string {
	switch classify(name, value) {
	case matchDeclaration:
		return rw.prefixed(value)
	case matchHrefReference:
		return "#" + rw.prefixed(value[1:])
	case matchEventTrigger:
		dot := strings.IndexByte(value, '.')
		return rw.prefixed(value[:dot]) + value[dot:]
	case matchValueList:
		return rw.rewriteValueList(value)
	case matchURLReference:
		return rw.rewriteURLs(value)
	}
	return value
}

// prefixed returns the rewritten name for an original identifier, recording
// the pair so repeated references stay consistent within the pass.
func (rw *rewriter) prefixed(id string) string {
	if id == "" {
		return id
	}
	if p, ok := rw.seen[id]; ok {
		return p
	}
	p := rw.prefix + id
	rw.seen[id] = p
	return p
}

// rewriteValueList rewrites every fragment reference in a semicolon-delimited
// list, leaving non-reference entries untouched.
func (rw *rewriter) rewriteValueList(value string) string {
	parts := strings.Split(value, ";")
	for i, part := range parts {
		trimmed := strings.TrimSpace(part)
		if strings.HasPrefix(trimmed, "#") && len(trimmed) > 1 {
			parts[i] = strings.Replace(part, trimmed, "#"+rw.prefixed(trimmed[1:]), 1)
		}
	}
	return strings.Join(parts, ";")
}

// rewriteURLs rewrites every url(#X) occurrence inside one value. Text
// between occurrences is preserved verbatim.
func (rw *rewriter) rewriteURLs(value string) string {
	var out strings.Builder
	i := 0
	for i < len(value) {
		if strings.HasPrefix(value[i:], "url(") {
			rewritten, n := rw.rewriteURLToken(value[i:])
			out.WriteString(rewritten)
			i += n
			continue
		}
		out.WriteByte(value[i])
		i++
	}
	return out.String()
}

// rewriteURLToken rewrites a single leading url(...) token. It returns the
// rewritten token and the number of input bytes consumed. Tokens that are not
// fragment references (url(http://...), data URIs) pass through unchanged.
func (rw *rewriter) rewriteURLToken(s string) (string, int) {
	close := strings.IndexByte(s, ')')
	if close < 0 {
		// Unterminated token, copy the "url(" marker and move on.
		return s[:4], 4
	}
	inner := strings.TrimSpace(s[4:close])
	if !strings.HasPrefix(inner, "#") || len(inner) < 2 {
		return s[:close+1], close + 1
	}
	return "url(#" + rw.prefixed(inner[1:]) + ")", close + 1
}

// isEventTrigger reports whether a begin value has the form "ident.event"
// where ident is a plausible element identifier. Clock values like "1.5s"
// must not be rewritten, so the part before the dot has to start with a
// letter or underscore.
func isEventTrigger(value string) bool {
	dot := strings.IndexByte(value, '.')
	if dot <= 0 || dot == len(value)-1 {
		return false
	}
	return isIdentifier(value[:dot])
}

// isIdentifier reports whether s is a plausible XML id token.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		ok := c == '_' || c == '-' || (c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}
	return true
}

// scanAttribute tries to read an attribute assignment starting at position i.
// On success it returns the attribute name, the value bounds (exclusive of
// quotes), the quote character and true. The attribute name must start at i
// and be preceded by whitespace or a tag-opening character so that plain text
// containing '=' is not misread.
func scanAttribute(markup string, i int) (name string, valStart, valEnd int, quote byte, ok bool) {
	if i > 0 {
		prev := markup[i-1]
		if !(prev == ' ' || prev == '\t' || prev == '\n' || prev == '\r' || prev == '"' || prev == '\'') {
			return "", 0, 0, 0, false
		}
	}

	j := i
	for j < len(markup) {
		c := markup[j]
		isNameChar := c == '_' || c == '-' || c == ':' || (c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isNameChar {
			break
		}
		j++
	}
	if j == i {
		return "", 0, 0, 0, false
	}
	name = markup[i:j]

	// Optional whitespace around '='.
	k := skipSpace(markup, j)
	if k >= len(markup) || markup[k] != '=' {
		return "", 0, 0, 0, false
	}
	k = skipSpace(markup, k+1)
	if k >= len(markup) || (markup[k] != '"' && markup[k] != '\'') {
		return "", 0, 0, 0, false
	}
	quote = markup[k]
	valStart = k + 1
	end := strings.IndexByte(markup[valStart:], quote)
	if end < 0 {
		return "", 0, 0, 0, false
	}
	return name, valStart, valStart + end, quote, true
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

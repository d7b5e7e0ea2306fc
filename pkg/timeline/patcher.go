package timeline

import (
	"log"
	"strings"
)

// Apply patches a document string with a list of mutations and returns the
// patched copy. The input is never modified; callers keep the processed
// markup pristine and re-patch from it every time the mutation list changes.
//
// Each mutation sets one attribute on the element declaring the matching id.
// When the animated attribute is a redirect pointer (href/xlink:href whose
// value is a fragment reference), overwriting it on the target element is
// exactly the redirection the evaluator resolved — the element's effective
// content now points at the new fragment. Mutations whose target cannot be
// found are logged and skipped; patching is best-effort like every other
// text transform in this player.
func Apply(markup string, muts []Mutation) string {
	for _, mut := range muts {
		patched, ok := applyOne(markup, mut)
		if !ok {
			log.Printf("[Patcher] Warning: cannot apply %s=%s, element '%s' not found",
				mut.Attribute, mut.Value, mut.TargetID)
			continue
		}
		markup = patched
	}
	return markup
}

func applyOne(markup string, mut Mutation) (string, bool) {
	tagStart, tagEnd, ok := findElementByID(markup, mut.TargetID)
	if !ok {
		return markup, false
	}

	tag := markup[tagStart : tagEnd+1]
	newTag := setAttribute(tag, mut.Attribute, mut.Value)
	return markup[:tagStart] + newTag + markup[tagEnd+1:], true
}

// findElementByID locates the opening tag of the element declaring id. The
// returned bounds include '<' and '>'.
func findElementByID(markup, id string) (int, int, bool) {
	for _, pattern := range []string{`id="` + id + `"`, `id='` + id + `'`} {
		pos := 0
		for {
			hit := strings.Index(markup[pos:], pattern)
			if hit < 0 {
				break
			}
			hit += pos

			// Reject suffix matches like data-id or grid: a declaration is
			// preceded by whitespace inside its tag.
			if hit == 0 || !isSpaceByte(markup[hit-1]) {
				pos = hit + 1
				continue
			}

			// The declaration must sit inside a tag; backtrack to its '<'.
			tagStart := strings.LastIndexByte(markup[:hit], '<')
			if tagStart < 0 {
				pos = hit + 1
				continue
			}
			tagEnd := strings.IndexByte(markup[hit:], '>')
			if tagEnd < 0 {
				pos = hit + 1
				continue
			}
			tagEnd += hit

			// Guard against the pattern appearing in text content: no '>'
			// may sit between the tag start and the declaration.
			if strings.IndexByte(markup[tagStart:hit], '>') >= 0 {
				pos = hit + 1
				continue
			}
			return tagStart, tagEnd, true
		}
	}
	return 0, 0, false
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// setAttribute replaces an attribute value inside a serialized tag, or
// inserts the attribute when absent.
func setAttribute(tag, name, value string) string {
	for _, quote := range []string{`"`, `'`} {
		search := " " + name + "=" + quote
		start := strings.Index(tag, search)
		if start < 0 {
			continue
		}
		start += len(search)
		end := strings.Index(tag[start:], quote)
		if end < 0 {
			continue
		}
		return tag[:start] + value + tag[start+end:]
	}

	// Attribute absent: insert before the tag close.
	insert := ` ` + name + `="` + value + `"`
	if strings.HasSuffix(tag, "/>") {
		return tag[:len(tag)-2] + insert + "/>"
	}
	if strings.HasSuffix(tag, ">") {
		return tag[:len(tag)-1] + insert + ">"
	}
	return tag + insert
}

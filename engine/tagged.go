package engine

import (
	"fmt"
	"sort"
	"strings"

	"vex/chat"
)

// parseTaggedCalls implements the text-tagged fallback protocol parser
// (spec.md §4.4.5): scans assistant text for
//
//	<function=NAME>
//	<parameter=KEY>
//	VALUE
//	</parameter>
//	</function>
//
// and returns one ToolUse block per <function=...> span, with a synthetic
// id toolu_tagged_<round>_<idx> and an input object of string values.
func parseTaggedCalls(text string, round int) []chat.ContentBlock {
	var out []chat.ContentBlock
	idx := 0
	callIdx := 0
	for {
		start := strings.Index(text[idx:], "<function=")
		if start < 0 {
			break
		}
		start += idx

		nameStart := start + len("<function=")
		nameEndRel := strings.IndexByte(text[nameStart:], '>')
		if nameEndRel < 0 {
			break
		}
		nameEnd := nameStart + nameEndRel
		name := text[nameStart:nameEnd]

		bodyStart := nameEnd + 1
		body, advance := taggedSpan(text, bodyStart, "</function>", "<function=")

		params := parseTaggedParams(body)
		input := chat.Value{Kind: chat.KindObject, Object: make(map[string]chat.Value, len(params))}
		for k, v := range params {
			input.Object[k] = chat.Value{Kind: chat.KindString, Str: v}
		}

		id := fmt.Sprintf("toolu_tagged_%d_%d", round, callIdx)
		out = append(out, chat.NewToolUseBlock(id, name, input))
		callIdx++
		idx = advance
	}
	return out
}

func parseTaggedParams(body string) map[string]string {
	params := make(map[string]string)
	idx := 0
	for {
		start := strings.Index(body[idx:], "<parameter=")
		if start < 0 {
			break
		}
		start += idx

		keyStart := start + len("<parameter=")
		keyEndRel := strings.IndexByte(body[keyStart:], '>')
		if keyEndRel < 0 {
			break
		}
		keyEnd := keyStart + keyEndRel
		key := body[keyStart:keyEnd]

		valStart := keyEnd + 1
		val, advance := taggedSpan(body, valStart, "</parameter>", "<parameter=")
		params[key] = normalizeTaggedValue(val)
		idx = advance
	}
	return params
}

// taggedSpan returns the content between from and whichever of closeTag /
// nextOpenTag appears first in text[from:], plus the index the caller
// should resume scanning from. An unclosed tag (neither marker found)
// consumes the rest of text (spec.md §4.4.5 "Unclosed tags accept whatever
// text is available").
func taggedSpan(text string, from int, closeTag, nextOpenTag string) (string, int) {
	rest := text[from:]
	closeIdx := strings.Index(rest, closeTag)
	nextIdx := strings.Index(rest, nextOpenTag)

	switch {
	case closeIdx >= 0 && (nextIdx < 0 || closeIdx <= nextIdx):
		end := from + closeIdx
		return text[from:end], end + len(closeTag)
	case nextIdx >= 0:
		end := from + nextIdx
		return text[from:end], end
	default:
		return text[from:], len(text)
	}
}

// normalizeTaggedValue CRLF-normalizes then trims one leading and one
// trailing newline (spec.md §4.4.5); internal whitespace is preserved.
func normalizeTaggedValue(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "\n")
	return s
}

// renderTaggedCalls writes calls back in the text-tagged protocol form
// (spec.md §4.4.5 "writing fallback tool calls back into history"), with
// parameter keys in lexicographic order so the protocol round-trips.
func renderTaggedCalls(calls []chat.ContentBlock) string {
	var b strings.Builder
	for i, c := range calls {
		if c.Kind != chat.BlockToolUse {
			continue
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("<function=")
		b.WriteString(c.Name)
		b.WriteString(">\n")
		for _, k := range sortedObjectKeys(c.Input) {
			v, _ := c.Input.Object[k].AsString()
			b.WriteString("<parameter=")
			b.WriteString(k)
			b.WriteString(">\n")
			b.WriteString(v)
			b.WriteString("\n</parameter>\n")
		}
		b.WriteString("</function>")
	}
	return b.String()
}

func sortedObjectKeys(v chat.Value) []string {
	if v.Kind != chat.KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.Object))
	for k := range v.Object {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

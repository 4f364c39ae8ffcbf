package reconcile

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/aidanlsb/roadmap/internal/roadmap"
)

// fieldBlockInfo is the info string of the fenced block that carries the
// fields the board has no native column for.
const fieldBlockInfo = "roadmap"

// DecodedBody is a remote body split into its free text and field block.
type DecodedBody struct {
	Description string
	Fields      map[string]string
}

// Label returns the label recorded in the field block, if any.
func (d DecodedBody) Label() string {
	return d.Fields["label"]
}

// EncodeBody renders the remote body for item: the description, a blank
// line, then a fenced key/value block in a fixed key order. The output
// depends only on the item, so pushing an unchanged item reproduces the
// same bytes.
func EncodeBody(item roadmap.Item) string {
	var b strings.Builder
	if desc := strings.TrimSpace(item.Description); desc != "" {
		b.WriteString(closeFences(desc))
		b.WriteString("\n\n")
	}
	b.WriteString("```" + fieldBlockInfo + "\n")
	for _, kv := range [][2]string{
		{"label", item.Label},
		{"kind", string(item.Kind)},
		{"layer", string(item.Layer)},
		{"priority", string(item.Priority)},
		{"start_date", item.StartDate},
	} {
		b.WriteString(kv[0])
		b.WriteString(": ")
		b.WriteString(kv[1])
		b.WriteString("\n")
	}
	b.WriteString("```")
	return b.String()
}

// closeFences appends a closing fence when desc leaves a code fence open,
// which would otherwise swallow the field block.
func closeFences(desc string) string {
	var open string
	for _, line := range strings.Split(desc, "\n") {
		fence, rest := fenceRun(line)
		switch {
		case fence == "":
		case open == "":
			if fence[0] == '`' && strings.Contains(rest, "`") {
				continue
			}
			open = fence
		case fence[0] == open[0] && len(fence) >= len(open) && strings.TrimSpace(rest) == "":
			open = ""
		}
	}
	if open == "" {
		return desc
	}
	return desc + "\n" + open
}

// fenceRun returns the run of three or more backticks or tildes that starts
// line, after at most three spaces of indent, and the text following it.
func fenceRun(line string) (fence, rest string) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || trimmed == "" {
		return "", ""
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return "", ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return "", ""
	}
	return trimmed[:n], trimmed[n:]
}

// DecodeBody finds the last fenced block tagged "roadmap" in body. ok is
// false when the body has no such block, in which case Description is the
// whole body.
func DecodeBody(body string) (decoded DecodedBody, ok bool) {
	src := []byte(normalizeBody(body))

	var block *ast.FencedCodeBlock
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fenced, isFenced := n.(*ast.FencedCodeBlock); isFenced {
			if string(fenced.Language(src)) == fieldBlockInfo && fenced.Lines().Len() > 0 {
				block = fenced
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	if block == nil {
		return DecodedBody{Description: string(src)}, false
	}

	lines := block.Lines()
	fields := make(map[string]string, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		key, value, found := strings.Cut(string(seg.Value(src)), ":")
		if !found {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	// The opening fence is the line just before the first content line.
	first := lines.At(0).Start
	fenceStart := 0
	if first > 0 {
		fenceStart = strings.LastIndexByte(string(src[:first-1]), '\n') + 1
	}

	return DecodedBody{
		Description: strings.TrimSpace(string(src[:fenceStart])),
		Fields:      fields,
	}, true
}

// normalizeBody smooths over whitespace differences boards introduce
// (CRLF line endings, trailing newlines) so they do not register as edits.
func normalizeBody(body string) string {
	return strings.TrimSpace(strings.ReplaceAll(body, "\r\n", "\n"))
}

func sameBody(a, b string) bool {
	return normalizeBody(a) == normalizeBody(b)
}

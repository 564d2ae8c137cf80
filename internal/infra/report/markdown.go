package report

import "strings"

// The narrative summary is machine-generated Markdown with no guarantee of
// being well-formed, so parsing is maximally permissive: headings at two
// weights, paragraphs and bullets are recognized, everything else is either
// folded into a paragraph or silently dropped. Nothing here returns an error.

type blockKind int

const (
	blockHeading blockKind = iota // top-level weight
	blockSubheading
	blockParagraph
	blockBullet
)

type block struct {
	kind blockKind
	text string
}

func parseMarkdown(text string) []block {
	var blocks []block
	var para []string

	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, block{kind: blockParagraph, text: strings.Join(para, " ")})
			para = nil
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		// Code fences are unrecognized markup: skip the markers and keep the
		// body as plain paragraph text.
		if strings.HasPrefix(line, "```") {
			continue
		}

		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "# "):
			flush()
			blocks = append(blocks, block{kind: blockHeading, text: stripInline(line[2:])})
		case strings.HasPrefix(line, "## ") || strings.HasPrefix(line, "### "):
			flush()
			blocks = append(blocks, block{kind: blockSubheading, text: stripInline(strings.TrimLeft(line, "# "))})
		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			flush()
			blocks = append(blocks, block{kind: blockBullet, text: stripInline(line[2:])})
		case strings.HasPrefix(line, ">"):
			para = append(para, stripInline(strings.TrimSpace(strings.TrimPrefix(line, ">"))))
		default:
			para = append(para, stripInline(line))
		}
	}
	flush()
	return blocks
}

// stripInline drops emphasis and inline-code markers; the PDF uses a single
// body face.
func stripInline(s string) string {
	r := strings.NewReplacer("**", "", "__", "", "`", "")
	return strings.TrimSpace(r.Replace(s))
}

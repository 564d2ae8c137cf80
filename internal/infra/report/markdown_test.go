package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkdownBasicStructure(t *testing.T) {
	text := `# Audit Summary

The contract has two issues worth attention.

## Key Findings
- Reentrancy in withdraw()
- tx.origin used for auth

## Recommended Actions

Apply checks-effects-interactions.`

	blocks := parseMarkdown(text)
	require.Len(t, blocks, 7)

	assert.Equal(t, blockHeading, blocks[0].kind)
	assert.Equal(t, "Audit Summary", blocks[0].text)
	assert.Equal(t, blockParagraph, blocks[1].kind)
	assert.Equal(t, blockSubheading, blocks[2].kind)
	assert.Equal(t, blockBullet, blocks[3].kind)
	assert.Equal(t, "Reentrancy in withdraw()", blocks[3].text)
	assert.Equal(t, blockBullet, blocks[4].kind)
	assert.Equal(t, blockSubheading, blocks[5].kind)
	assert.Equal(t, blockParagraph, blocks[6].kind)
}

func TestParseMarkdownJoinsParagraphLines(t *testing.T) {
	blocks := parseMarkdown("line one\nline two\n\nline three")
	require.Len(t, blocks, 2)
	assert.Equal(t, "line one line two", blocks[0].text)
	assert.Equal(t, "line three", blocks[1].text)
}

func TestParseMarkdownIgnoresUnknownMarkup(t *testing.T) {
	text := "```json\n{\"x\": 1}\n```\n\n> quoted advice\n\n**bold** and `code` inline"
	blocks := parseMarkdown(text)

	// Fence markers vanish; fenced body, quote and inline markup survive as
	// plain text.
	require.Len(t, blocks, 3)
	assert.Equal(t, `{"x": 1}`, blocks[0].text)
	assert.Equal(t, "quoted advice", blocks[1].text)
	assert.Equal(t, "bold and code inline", blocks[2].text)
}

func TestParseMarkdownEmptyInput(t *testing.T) {
	assert.Empty(t, parseMarkdown(""))
	assert.Empty(t, parseMarkdown("\n\n\n"))
}

func TestParseMarkdownDeepHeadingsMapToSubheading(t *testing.T) {
	blocks := parseMarkdown("### deep heading")
	require.Len(t, blocks, 1)
	assert.Equal(t, blockSubheading, blocks[0].kind)
	assert.Equal(t, "deep heading", blocks[0].text)
}

func TestParseMarkdownStarBullets(t *testing.T) {
	blocks := parseMarkdown("* first\n* second")
	require.Len(t, blocks, 2)
	assert.Equal(t, blockBullet, blocks[0].kind)
	assert.Equal(t, blockBullet, blocks[1].kind)
}

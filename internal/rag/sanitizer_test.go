package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStripsControlChars(t *testing.T) {
	in := "abc\x00def\x01\x02ghi\x7f"
	out := Sanitize(in)
	assert.Equal(t, "abcdefghi", out)
}

func TestSanitizeKeepsWhitespace(t *testing.T) {
	in := "line1\nline2\r\n\tindented"
	assert.Equal(t, in, Sanitize(in))
}

func TestSanitizeKeepsUnicode(t *testing.T) {
	in := "会议纪要 — Q3 复盘 ✅"
	assert.Equal(t, in, Sanitize(in))
}

func TestSanitizeIdempotent(t *testing.T) {
	in := "a\x00b\x1fc\td\n"
	once := Sanitize(in)
	assert.Equal(t, once, Sanitize(once))
}

func TestSanitizeNeverLengthens(t *testing.T) {
	cases := []string{"", "plain", "\x00\x00\x00", "mixed\x00text\n", "中文\x07内容"}
	for _, c := range cases {
		assert.LessOrEqual(t, len(Sanitize(c)), len(c))
	}
}

func TestSanitizeEmpty(t *testing.T) {
	assert.Equal(t, "", Sanitize(""))
}

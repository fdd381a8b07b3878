package channels

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessageShort(t *testing.T) {
	assert.Equal(t, []string{"hello"}, splitMessage("hello", 100))
	assert.Nil(t, splitMessage("", 100))
}

func TestSplitMessagePrefersNewline(t *testing.T) {
	content := "first line\nsecond line that runs long"
	chunks := splitMessage(content, 15)
	assert.Equal(t, "first line", chunks[0])
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 15)
	}
	assert.Equal(t, strings.Join(strings.Fields(content), " "), strings.Join(strings.Fields(strings.Join(chunks, " ")), " "))
}

func TestSplitMessageUnbrokenRun(t *testing.T) {
	content := strings.Repeat("x", 25)
	chunks := splitMessage(content, 10)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, chunks)
}

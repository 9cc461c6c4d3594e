package connectors

import (
	"regexp"
	"strings"
)

// Matches a fenced code block with an optional language tag.
var codeBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\n(.*?)\n```")

// splitResult shapes a completion into the (output, explanation) pair: the
// first fenced code block becomes the output and the prose around the blocks
// becomes the explanation. Completions without a code block pass through as
// both output and explanation.
func splitResult(content string) *Result {
	output := content
	if m := codeBlockRe.FindStringSubmatch(content); m != nil {
		output = m[1]
	}
	explanation := strings.TrimSpace(codeBlockRe.ReplaceAllString(content, ""))
	return &Result{Output: output, Explanation: explanation}
}

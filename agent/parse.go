package agent

import (
	"errors"
	"strings"
)

// ErrNoCodeBlock is returned when a response carries no usable code block.
var ErrNoCodeBlock = errors.New("response contains no code block")

// ExtractCode pulls the candidate program out of an oracle response. It
// accepts a fenced block with or without a language tag and prefers the
// first python-tagged block; a bare response that already looks like code
// (defines transform) passes through unchanged.
func ExtractCode(response string) (string, error) {
	if block, ok := fencedBlock(response, "```python"); ok {
		return block, nil
	}
	if block, ok := fencedBlock(response, "```"); ok {
		return block, nil
	}
	if strings.Contains(response, "def transform") {
		return strings.TrimSpace(response), nil
	}
	return "", ErrNoCodeBlock
}

func fencedBlock(response, open string) (string, bool) {
	start := strings.Index(response, open)
	if start < 0 {
		return "", false
	}
	rest := response[start+len(open):]
	// The remainder of the fence line is a language tag or empty; skip it.
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return "", false
	}
	rest = rest[nl+1:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	block := strings.TrimSpace(rest[:end])
	if block == "" {
		return "", false
	}
	return block, true
}

package llm

import (
	"fmt"
	"strings"
)

// CleanMarkdownWrapper strips markdown code fences that models often wrap
// around JSON output.
func CleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		// Drop the opening fence line (``` or ```json).
		if idx := strings.Index(content, "\n"); idx >= 0 {
			content = content[idx+1:]
		} else {
			content = strings.TrimPrefix(content, "```")
		}
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}

// ExtractJSON returns the first complete JSON object or array in the
// response text. Models frequently prepend or append commentary; anything
// outside the outermost braces is discarded.
func ExtractJSON(content string) (string, error) {
	content = CleanMarkdownWrapper(content)

	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return "", fmt.Errorf("no JSON found in response")
	}

	open := content[start]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
			// Brackets inside strings don't count.
		case ch == open:
			depth++
		case ch == closer:
			depth--
			if depth == 0 {
				return content[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON in response")
}

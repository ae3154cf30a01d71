package lexical

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProjectText flattens serialized Lexical JSON into the plain-text projection
// the editing session uses as derivedText. Input that does not look like a
// Lexical document is returned unchanged, so plain strings pass through.
func ProjectText(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, `{"root":`) {
		return content
	}

	text, err := parse(trimmed)
	if err != nil {
		return content
	}
	return text
}

func parse(jsonContent string) (string, error) {
	var r root
	if err := json.Unmarshal([]byte(jsonContent), &r); err != nil {
		return "", fmt.Errorf("failed to parse lexical json: %w", err)
	}

	var sb strings.Builder
	walk(r.Root, &sb, 0)
	return strings.TrimRight(sb.String(), "\n"), nil
}

func walk(n node, sb *strings.Builder, depth int) {
	switch n.Type {
	case "root":
		for _, child := range n.Children {
			walk(child, sb, depth)
		}

	case "paragraph", "heading", "quote":
		for _, child := range n.Children {
			walk(child, sb, depth)
		}
		sb.WriteString("\n")

	case "text":
		sb.WriteString(n.Text)

	case "linebreak":
		sb.WriteString("\n")

	case "link":
		for _, child := range n.Children {
			walk(child, sb, depth)
		}

	case "list":
		walkList(n, sb, depth)

	default:
		for _, child := range n.Children {
			walk(child, sb, depth)
		}
	}
}

func walkList(list node, sb *strings.Builder, depth int) {
	index := 1
	for _, item := range list.Children {
		if item.Type != "listitem" {
			continue
		}

		sb.WriteString(strings.Repeat("  ", depth))
		switch list.ListType {
		case "number":
			fmt.Fprintf(sb, "%d. ", index)
			index++
		case "check":
			if item.Checked {
				sb.WriteString("[x] ")
			} else {
				sb.WriteString("[ ] ")
			}
		default:
			sb.WriteString("- ")
		}

		for _, child := range item.Children {
			if child.Type == "list" {
				sb.WriteString("\n")
				walkList(child, sb, depth+1)
			} else {
				walk(child, sb, depth)
			}
		}
		sb.WriteString("\n")
	}
}

package jira

import (
	"bytes"
	"encoding/json"
	"strings"
)

type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

// CommentText returns the plain text of a worklog comment. Plain strings are
// returned as-is. Rich text documents yield the text nodes of their top-level
// paragraphs joined by single spaces. Anything else, null included, is "".
func CommentText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return ""
		}
		return text
	case '{':
		var doc adfNode
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return ""
		}
		return documentText(doc)
	default:
		return ""
	}
}

func documentText(doc adfNode) string {
	parts := make([]string, 0)
	for _, block := range doc.Content {
		if block.Type != "paragraph" {
			continue
		}
		for _, inline := range block.Content {
			if inline.Type == "text" && inline.Text != "" {
				parts = append(parts, inline.Text)
			}
		}
	}
	return strings.Join(parts, " ")
}

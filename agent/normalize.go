package agent

import (
	"encoding/json"
	"strings"

	"github.com/formloop/formloop/mcpclient"
)

// contentBlock is the shape of one entry in a tool result's content array.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ResultText flattens a tool result into the text fed back to the model.
// Text blocks are joined with newlines and other block kinds are skipped.
// A result that does not match the content-block shape is rendered as-is;
// this function never fails.
func ResultText(result *mcpclient.Result) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	var blocks []contentBlock
	if err := json.Unmarshal(result.Content, &blocks); err != nil {
		return strings.TrimSpace(string(result.Content))
	}

	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

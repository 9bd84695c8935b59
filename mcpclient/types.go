package mcpclient

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDescriptor describes one tool advertised by the server. Description
// and Schema are optional on the wire and may be empty.
type ToolDescriptor struct {
	Name        string
	Description string
	Schema      json.RawMessage
}

// Result is the outcome of one tool invocation. Content holds the raw
// content-block array exactly as the server returned it; IsError marks a
// failure reported by the tool itself.
type Result struct {
	Content json.RawMessage
	IsError bool
}

func toDescriptor(tool *mcp.Tool) ToolDescriptor {
	if tool == nil {
		return ToolDescriptor{}
	}
	desc := ToolDescriptor{Name: tool.Name, Description: tool.Description}
	if tool.InputSchema != nil {
		if raw, err := json.Marshal(tool.InputSchema); err == nil {
			desc.Schema = raw
		}
	}
	return desc
}

func toResult(res *mcp.CallToolResult) *Result {
	if res == nil {
		return &Result{}
	}
	raw, err := json.Marshal(res.Content)
	if err != nil {
		raw = json.RawMessage(`[]`)
	}
	return &Result{Content: raw, IsError: res.IsError}
}

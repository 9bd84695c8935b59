package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/formloop/formloop/llm"
	"github.com/formloop/formloop/mcpclient"
)

// ToolSession is the slice of a capability session the loop depends on.
// *mcpclient.Session satisfies it.
type ToolSession interface {
	ListTools(ctx context.Context) ([]mcpclient.ToolDescriptor, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*mcpclient.Result, error)
}

// CatalogError reports that the tool catalog could not be fetched.
type CatalogError struct {
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("agent: tool catalog unavailable: %v", e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// FetchCatalog queries the session for its tool catalog. The loop calls it
// exactly once per run; tool availability does not change mid-run.
func FetchCatalog(ctx context.Context, session ToolSession) ([]mcpclient.ToolDescriptor, error) {
	descriptors, err := session.ListTools(ctx)
	if err != nil {
		return nil, &CatalogError{Err: err}
	}
	return descriptors, nil
}

// EmptyObjectSchema is the parameter schema sent for tools that declare none.
func EmptyObjectSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

// FunctionSchemas converts tool descriptors into completion-request tool
// definitions. A missing description becomes the empty string; a missing or
// unreadable parameter schema becomes the empty object schema.
func FunctionSchemas(descriptors []mcpclient.ToolDescriptor) []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(descriptors))
	for _, d := range descriptors {
		def := llm.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  EmptyObjectSchema(),
		}
		if len(d.Schema) > 0 {
			var params map[string]any
			if err := json.Unmarshal(d.Schema, &params); err == nil && params != nil {
				def.Parameters = params
			}
		}
		defs = append(defs, def)
	}
	return defs
}

// parseArguments parses a tool call's raw argument payload into a map. On
// parse failure it substitutes an empty argument set and reports false; a
// bad payload never aborts the run.
func parseArguments(raw json.RawMessage) (map[string]any, bool) {
	if len(raw) == 0 {
		return map[string]any{}, true
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return map[string]any{}, false
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, true
}

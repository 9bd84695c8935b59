// Package mcpclient is a small client for MCP tool servers built on the
// official Go SDK. A Session is started once, queried for its tool catalog,
// invoked as many times as needed, and closed.
package mcpclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	clientName    = "formloop"
	clientVersion = "0.1.0"
)

// Session is a connection to one MCP tool server.
type Session struct {
	client *mcp.Client
	spec   string

	mu      sync.Mutex
	session *mcp.ClientSession
}

// New creates a session for the given transport spec. No connection is made
// until Start.
func New(spec string) *Session {
	client := mcp.NewClient(&mcp.Implementation{Name: clientName, Version: clientVersion}, nil)
	return &Session{client: client, spec: spec}
}

// Start connects to the server and performs the protocol handshake. Calling
// Start on a connected session is a no-op.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		return nil
	}

	transport, err := transportBuilder(ctx, s.spec)
	if err != nil {
		return &ConnectionError{Spec: s.spec, Err: err}
	}
	session, err := s.client.Connect(ctx, transport, nil)
	if err != nil {
		return &ConnectionError{Spec: s.spec, Err: err}
	}
	s.session = session
	return nil
}

func (s *Session) current() (*mcp.ClientSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ErrNotStarted
	}
	return s.session, nil
}

// ListTools returns every tool the server advertises, following list
// pagination to the end.
func (s *Session) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	session, err := s.current()
	if err != nil {
		return nil, err
	}

	var tools []ToolDescriptor
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("mcpclient: list tools: %w", err)
		}
		tools = append(tools, toDescriptor(tool))
	}
	return tools, nil
}

// CallTool invokes one tool by name with the given arguments.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (*Result, error) {
	session, err := s.current()
	if err != nil {
		return nil, err
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, &ToolExecutionError{Tool: name, Err: err}
	}
	return toResult(result), nil
}

// Close shuts the connection down. It is safe on a session that was never
// started and safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}

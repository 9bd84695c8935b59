package mcpclient

import (
	"errors"
	"fmt"
)

// ErrNotStarted is returned when ListTools or CallTool is used before Start.
var ErrNotStarted = errors.New("mcpclient: session not started")

// ConnectionError reports a failure to reach or handshake with the server.
type ConnectionError struct {
	Spec string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("mcpclient: connect %q: %v", e.Spec, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ToolExecutionError reports a protocol-level failure while invoking a tool.
// Tool-level failures are not errors; they come back as a Result with
// IsError set.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("mcpclient: call %s: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

package mcpclient

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	stdioScheme = "stdio://"
	sseScheme   = "sse://"
)

// transportBuilder is overridden in tests to stub the transport factory.
var transportBuilder = buildTransport

// buildTransport maps a transport spec to an SDK transport. Supported forms:
//
//	stdio://<command line>   spawn a local server process
//	sse://<endpoint>         SSE endpoint (https assumed when bare)
//	http(s)://<endpoint>     streamable HTTP endpoint
//	<command line>           shorthand for stdio
func buildTransport(ctx context.Context, spec string) (mcp.Transport, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("transport spec is empty")
	}

	lowered := strings.ToLower(spec)
	switch {
	case strings.HasPrefix(lowered, stdioScheme):
		return stdioTransport(ctx, spec[len(stdioScheme):])
	case strings.HasPrefix(lowered, sseScheme):
		endpoint, err := normalizeEndpoint(spec[len(sseScheme):], true)
		if err != nil {
			return nil, fmt.Errorf("invalid SSE endpoint: %w", err)
		}
		return &mcp.SSEClientTransport{Endpoint: endpoint}, nil
	case strings.HasPrefix(lowered, "http://"), strings.HasPrefix(lowered, "https://"):
		endpoint, err := normalizeEndpoint(spec, false)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP endpoint: %w", err)
		}
		return &mcp.StreamableClientTransport{Endpoint: endpoint}, nil
	}

	return stdioTransport(ctx, spec)
}

func stdioTransport(ctx context.Context, cmdSpec string) (mcp.Transport, error) {
	parts := strings.Fields(strings.TrimSpace(cmdSpec))
	if len(parts) == 0 {
		return nil, fmt.Errorf("stdio command is empty")
	}
	// Fail fast on explicit paths that do not exist; bare names resolve
	// through PATH at connect time.
	if strings.ContainsRune(parts[0], os.PathSeparator) {
		if _, err := os.Stat(parts[0]); err != nil {
			return nil, fmt.Errorf("server executable %s: %w", parts[0], err)
		}
	}
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	return &mcp.CommandTransport{Command: cmd}, nil
}

func normalizeEndpoint(raw string, guessScheme bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("endpoint is empty")
	}
	if guessScheme && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	parsed.Scheme = scheme
	return parsed.String(), nil
}

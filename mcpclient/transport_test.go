package mcpclient

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestBuildTransportStdio(t *testing.T) {
	transport, err := buildTransport(context.Background(), "stdio://forms-server --port 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cmdTransport, ok := transport.(*mcp.CommandTransport)
	if !ok {
		t.Fatalf("expected CommandTransport, got %T", transport)
	}
	args := cmdTransport.Command.Args
	if len(args) != 3 || args[1] != "--port" || args[2] != "0" {
		t.Errorf("unexpected command args: %v", args)
	}
}

func TestBuildTransportBareCommand(t *testing.T) {
	transport, err := buildTransport(context.Background(), "forms-server")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := transport.(*mcp.CommandTransport); !ok {
		t.Fatalf("expected CommandTransport, got %T", transport)
	}
}

func TestBuildTransportMissingExecutable(t *testing.T) {
	_, err := buildTransport(context.Background(), "./no-such-forms-server")
	if err == nil {
		t.Fatal("expected error for missing executable path")
	}
	if !strings.Contains(err.Error(), "no-such-forms-server") {
		t.Errorf("expected path in error, got %v", err)
	}
}

func TestBuildTransportSSE(t *testing.T) {
	transport, err := buildTransport(context.Background(), "sse://forms.example.com/mcp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sse, ok := transport.(*mcp.SSEClientTransport)
	if !ok {
		t.Fatalf("expected SSEClientTransport, got %T", transport)
	}
	if sse.Endpoint != "https://forms.example.com/mcp" {
		t.Errorf("unexpected endpoint: %q", sse.Endpoint)
	}
}

func TestBuildTransportHTTP(t *testing.T) {
	transport, err := buildTransport(context.Background(), "https://forms.example.com/mcp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	streamable, ok := transport.(*mcp.StreamableClientTransport)
	if !ok {
		t.Fatalf("expected StreamableClientTransport, got %T", transport)
	}
	if streamable.Endpoint != "https://forms.example.com/mcp" {
		t.Errorf("unexpected endpoint: %q", streamable.Endpoint)
	}
}

func TestBuildTransportInvalidSpecs(t *testing.T) {
	for _, spec := range []string{"", "   ", "stdio://", "sse://"} {
		if _, err := buildTransport(context.Background(), spec); err == nil {
			t.Errorf("expected error for spec %q", spec)
		}
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		raw     string
		guess   bool
		want    string
		wantErr bool
	}{
		{"https://forms.example.com/mcp", false, "https://forms.example.com/mcp", false},
		{"forms.example.com/mcp", true, "https://forms.example.com/mcp", false},
		{"HTTP://forms.example.com", false, "http://forms.example.com", false},
		{"", false, "", true},
		{"ftp://forms.example.com", false, "", true},
		{"https://", false, "", true},
	}
	for _, tt := range tests {
		got, err := normalizeEndpoint(tt.raw, tt.guess)
		if tt.wantErr {
			if err == nil {
				t.Errorf("normalizeEndpoint(%q): expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizeEndpoint(%q): unexpected error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizeEndpoint(%q): expected %q, got %q", tt.raw, tt.want, got)
		}
	}
}

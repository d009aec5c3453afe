package mcp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the MCP server version.
const Version = "0.1.0"

// shutdownTimeout bounds the HTTP drain after the context is cancelled.
const shutdownTimeout = 5 * time.Second

// serverInstructions is sent to MCP clients at initialization so they
// know what the server exposes without probing. The surface is
// read-only: meetings are registered and processed through the CLI,
// and this server answers questions about the results.
const serverInstructions = `Minute exposes processed meeting recordings.

Tools:
- list_meetings: registered meetings, optionally filtered by project
- get_status: pipeline stage and progress for a meeting
- get_analysis: merged analysis (sections, chronology, metrics) once processing completed

Resources:
- minute://meetings: JSON list of all registered meetings
- minute://meetings/{meetingId}/transcript: speaker-attributed transcript

Analyses and transcripts are only available for meetings whose status is
completed. Poll get_status while a meeting is still processing.`

// Server answers meeting queries over the Model Context Protocol.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "minute",
		Version: Version,
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(impl, &mcp.ServerOptions{
			Instructions: serverInstructions,
		}),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Drain in-flight sessions when the context is cancelled, but do
	// not wait on a client that never disconnects.
	go func() {
		<-ctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.Shutdown(drainCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

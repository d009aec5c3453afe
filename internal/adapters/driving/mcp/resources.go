package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Minute resources.
	uriScheme = "minute://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing meetings.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "meetings",
		Name:        "meetings",
		Description: "List of all registered meetings",
		MIMEType:    "application/json",
	}, s.handleMeetingsResource)

	// Template for meeting transcripts.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "meetings/{meetingId}/transcript",
		Name:        "meeting-transcript",
		Description: "Speaker-attributed transcript of a processed meeting",
		MIMEType:    "text/plain",
	}, s.handleTranscriptResource)
}

// handleMeetingsResource returns a list of all registered meetings.
func (s *Server) handleMeetingsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	meetings, err := s.ports.Meetings.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}

	// Build simplified meeting list.
	type meetingInfo struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Date   string `json:"date,omitempty"`
		Status string `json:"status"`
	}

	infos := make([]meetingInfo, len(meetings))
	for i := range meetings {
		infos[i] = meetingInfo{
			ID:     meetings[i].ID,
			Title:  meetings[i].Title,
			Date:   meetings[i].Date,
			Status: string(meetings[i].Status),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling meetings: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleTranscriptResource returns the transcript of a specific meeting.
func (s *Server) handleTranscriptResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract meetingId from URI: minute://meetings/{meetingId}/transcript
	meetingID := extractMeetingID(req.Params.URI)
	if meetingID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Meetings.Transcript(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("getting transcript: %w", err)
	}

	var sb strings.Builder
	for _, seg := range doc.Segments {
		minutes := int(seg.StartTime) / 60
		seconds := int(seg.StartTime) % 60
		fmt.Fprintf(&sb, "[%02d:%02d] %s: %s\n", minutes, seconds, seg.Speaker, seg.Text)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     sb.String(),
		}},
	}, nil
}

// extractMeetingID extracts the meeting ID from a URI like
// minute://meetings/{meetingId}/transcript.
func extractMeetingID(uri string) string {
	const prefix = uriScheme + "meetings/"
	const suffix = "/transcript"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}

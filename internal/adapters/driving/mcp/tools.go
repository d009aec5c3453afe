package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

// ListMeetingsInput is the input schema for the list_meetings tool.
type ListMeetingsInput struct {
	Project string `json:"project,omitempty" jsonschema:"optional project id to filter meetings"`
}

// ListMeetingsOutput is the output schema for the list_meetings tool.
type ListMeetingsOutput struct {
	Meetings []MeetingOutput `json:"meetings"`
	Count    int             `json:"count"`
}

// MeetingOutput represents a single meeting in tool results.
type MeetingOutput struct {
	ID           string   `json:"id"`
	ProjectID    string   `json:"project_id,omitempty"`
	Title        string   `json:"title"`
	Date         string   `json:"date,omitempty"`
	Status       string   `json:"status"`
	Duration     float64  `json:"duration_seconds"`
	Participants []string `json:"participants,omitempty"`
	ReportPath   string   `json:"report_path,omitempty"`
}

// GetAnalysisInput is the input schema for the get_analysis tool.
type GetAnalysisInput struct {
	MeetingID string `json:"meeting_id" jsonschema:"the id of the meeting to fetch the analysis for"`
}

// GetAnalysisOutput is the output schema for the get_analysis tool.
type GetAnalysisOutput struct {
	Meta       map[string]any           `json:"meta"`
	Sections   map[string][]domain.Item `json:"sections"`
	Chronology []string                 `json:"chronology"`
	Quality    string                   `json:"quality"`
	Analyzed   int                      `json:"segments_analyzed"`
	Total      int                      `json:"total_segments"`
}

// GetStatusInput is the input schema for the get_status tool.
type GetStatusInput struct {
	MeetingID string `json:"meeting_id" jsonschema:"the id of the meeting to fetch processing status for"`
}

// GetStatusOutput is the output schema for the get_status tool.
type GetStatusOutput struct {
	Stage    string `json:"stage"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Active   bool   `json:"active"`

	// EstimatedSecondsRemaining is omitted once the run has finished.
	EstimatedSecondsRemaining *int `json:"estimated_seconds_remaining,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_meetings",
		Description: "List registered meetings, optionally filtered by project",
	}, s.handleListMeetings)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_analysis",
		Description: "Get the merged analysis (sections, chronology, metrics) for a processed meeting",
	}, s.handleGetAnalysis)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_status",
		Description: "Get the processing pipeline status for a meeting",
	}, s.handleGetStatus)
}

// handleListMeetings handles the list_meetings tool invocation.
func (s *Server) handleListMeetings(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListMeetingsInput,
) (*mcp.CallToolResult, ListMeetingsOutput, error) {
	meetings, err := s.ports.Meetings.List(ctx, input.Project)
	if err != nil {
		return nil, ListMeetingsOutput{}, err
	}

	output := ListMeetingsOutput{
		Meetings: make([]MeetingOutput, len(meetings)),
		Count:    len(meetings),
	}

	for i := range meetings {
		output.Meetings[i] = MeetingOutput{
			ID:           meetings[i].ID,
			ProjectID:    meetings[i].ProjectID,
			Title:        meetings[i].Title,
			Date:         meetings[i].Date,
			Status:       string(meetings[i].Status),
			Duration:     meetings[i].Duration,
			Participants: meetings[i].ParticipantsDetected,
			ReportPath:   meetings[i].ReportPath,
		}
	}

	return nil, output, nil
}

// handleGetAnalysis handles the get_analysis tool invocation.
func (s *Server) handleGetAnalysis(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetAnalysisInput,
) (*mcp.CallToolResult, GetAnalysisOutput, error) {
	if input.MeetingID == "" {
		return nil, GetAnalysisOutput{}, errors.New("meeting_id is required")
	}

	analysis, err := s.ports.Meetings.Analysis(ctx, input.MeetingID)
	if err != nil {
		return nil, GetAnalysisOutput{}, err
	}

	output := GetAnalysisOutput{
		Meta:       analysis.Meta,
		Sections:   analysis.Sections,
		Chronology: analysis.Chronology,
		Quality:    analysis.Metrics.Quality,
		Analyzed:   analysis.Metrics.SegmentsAnalyzed,
		Total:      analysis.Metrics.TotalSegments,
	}

	return nil, output, nil
}

// handleGetStatus handles the get_status tool invocation.
func (s *Server) handleGetStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetStatusInput,
) (*mcp.CallToolResult, GetStatusOutput, error) {
	if input.MeetingID == "" {
		return nil, GetStatusOutput{}, errors.New("meeting_id is required")
	}
	if s.ports.Pipeline == nil {
		return nil, GetStatusOutput{}, errors.New("pipeline status is not available")
	}

	status, err := s.ports.Pipeline.Status(ctx, input.MeetingID)
	if err != nil {
		return nil, GetStatusOutput{}, err
	}

	output := GetStatusOutput{
		Stage:                     string(status.Stage),
		Progress:                  status.Progress,
		Message:                   status.Message,
		Active:                    s.ports.Pipeline.Active(input.MeetingID),
		EstimatedSecondsRemaining: status.EstimatedTimeRemaining,
	}

	return nil, output, nil
}

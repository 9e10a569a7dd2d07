// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes blood-pressure tracker tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/bptracker/internal/apperr"
	"github.com/starford/bptracker/internal/entryservice"
	"github.com/starford/bptracker/internal/reading"
)

// Server wraps the MCP server with tracker tools.
type Server struct {
	mcp      *server.MCPServer
	svc      *entryservice.Service
	defaults reading.Defaults
}

// New creates a new MCP server with all tracker tools registered. defaults is
// the entry-creation policy applied by add_reading.
func New(svc *entryservice.Service, defaults reading.Defaults) *Server {
	s := &Server{svc: svc, defaults: defaults}

	s.mcp = server.NewMCPServer(
		"BP Tracker",
		"2.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_readings",
		mcp.WithDescription("List every stored blood-pressure reading with its category."),
	), s.listReadings)

	s.mcp.AddTool(mcp.NewTool("get_reading",
		mcp.WithDescription("Get a single reading by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Reading id")),
	), s.getReading)

	s.mcp.AddTool(mcp.NewTool("add_reading",
		mcp.WithDescription("Record a new blood-pressure reading. Values are validated against "+
			"the accepted ranges listed in the "+CategoriesURI+" resource."),
		mcp.WithString("dateTime", mcp.Required(), mcp.Description("Measurement time, YYYY-MM-DD HH:MM:SS")),
		mcp.WithNumber("systolic", mcp.Required(), mcp.Description("Systolic pressure in mmHg (70-250)")),
		mcp.WithNumber("diastolic", mcp.Required(), mcp.Description("Diastolic pressure in mmHg (40-150)")),
		mcp.WithNumber("heartRate", mcp.Required(), mcp.Description("Heart rate in bpm (30-200)")),
		mcp.WithString("location", mcp.Description("Where the reading was taken")),
		mcp.WithString("notes", mcp.Description("Free-form notes")),
	), s.addReading)

	s.mcp.AddTool(mcp.NewTool("delete_reading",
		mcp.WithDescription("Delete a reading by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Reading id")),
	), s.deleteReading)

	s.mcp.AddTool(mcp.NewTool("get_statistics",
		mcp.WithDescription("Average, minimum and maximum of systolic, diastolic and heart rate over all readings."),
	), s.getStatistics)

	s.mcp.AddTool(mcp.NewTool("classify_reading",
		mcp.WithDescription("Classify a systolic/diastolic pair without storing it."),
		mcp.WithNumber("systolic", mcp.Required(), mcp.Description("Systolic pressure in mmHg")),
		mcp.WithNumber("diastolic", mcp.Required(), mcp.Description("Diastolic pressure in mmHg")),
	), s.classifyReading)

	s.mcp.AddResource(
		mcp.NewResource(CategoriesURI, "Blood Pressure Categories",
			mcp.WithResourceDescription("Classification bands and accepted measurement ranges."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCategoriesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// rawArg returns an argument as text for the shared validator. Numbers are
// formatted without a trailing ".0".
func rawArg(req mcp.CallToolRequest, key string) string {
	switch v := req.GetArguments()[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (s *Server) listReadings(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all, err := s.svc.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(all) == 0 {
		return mcp.NewToolResultText("no readings recorded"), nil
	}
	return jsonResult(all), nil
}

func (s *Server) getReading(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := s.svc.Get(ctx, int64(id))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %d", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(r), nil
}

func (s *Server) addReading(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := reading.Input{
		Timestamp: rawArg(req, "dateTime"),
		Systolic:  rawArg(req, "systolic"),
		Diastolic: rawArg(req, "diastolic"),
		HeartRate: rawArg(req, "heartRate"),
		Location:  req.GetString("location", ""),
		Notes:     req.GetString("notes", ""),
	}
	r, err := s.svc.Create(ctx, in, s.defaults)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(r), nil
}

func (s *Server) deleteReading(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, int64(id)); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %d", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %d", id)), nil
}

func (s *Server) getStatistics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, ok, err := s.svc.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultText("no data available"), nil
	}
	return jsonResult(summary), nil
}

func (s *Server) classifyReading(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sys, err := req.RequireInt("systolic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dia, err := req.RequireInt("diastolic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(reading.Classify(sys, dia))), nil
}

func (s *Server) readCategoriesResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CategoriesURI,
			MIMEType: "text/markdown",
			Text:     CategoriesDoc(),
		},
	}, nil
}

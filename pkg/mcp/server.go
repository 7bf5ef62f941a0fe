package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/rmax-ai/streamsim/pkg/logging"
	"github.com/rmax-ai/streamsim/pkg/simulation"
)

const variantsURI = "streamsim://variants"

// Submitter sends a payload to the proxy and returns the playback URL.
type Submitter interface {
	Submit(ctx context.Context, payload simulation.Payload) (string, error)
}

// Server exposes the simulation builder and submission over the Model
// Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	submitter Submitter
	logger    *logrus.Entry
}

// NewServer creates a new MCP server instance.
func NewServer(submitter Submitter, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		mcpServer: server.NewMCPServer(
			"streamsim",
			"1.0.0",
		),
		submitter: submitter,
		logger:    logging.WithComponent(logger, "mcp"),
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		variantsURI,
		"Simulation Variants",
		mcp.WithResourceDescription("Fault-injection variants the proxy supports and the fields each one sends"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadVariants)
}

// --- Tools ---

func simulationToolOptions(description string) []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("url", mcp.Required(), mcp.Description("Source stream URL the proxy should wrap")),
		mcp.WithString("simulate", mcp.Required(),
			mcp.Description("Simulation variant"),
			mcp.Enum(variantNames()...),
		),
	}
	for _, spec := range simulation.SharedFields() {
		if spec.Kind != simulation.KindInt {
			continue
		}
		opts = append(opts, mcp.WithNumber(string(spec.Name), mcp.Description(spec.Label)))
	}
	return opts
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"build_payload",
		simulationToolOptions("Build the configuration the console would send for a simulation, without sending it.")...,
	), s.handleBuildPayload)

	s.mcpServer.AddTool(mcp.NewTool(
		"start_simulation",
		simulationToolOptions("Start a simulation on the streaming proxy. Returns the playback URL.")...,
	), s.handleStartSimulation)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"streamsim-aware",
		mcp.WithPromptDescription("Explains the simulation variants and how to start one"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleReadVariants(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(simulation.Variants(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal variants: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleBuildPayload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := buildFromArguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleStartSimulation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := buildFromArguments(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	generatedURL, err := s.submitter.Submit(ctx, payload)
	if err != nil {
		s.logger.WithError(err).WithField("variant", payload.Simulate).Warn("mcp_submission_failed")
		return mcp.NewToolResultError(fmt.Sprintf("Submission failed: %v", err)), nil
	}

	resultMsg := fmt.Sprintf("Simulation: %s\nPlayback URL: %s", payload.Simulate, generatedURL)
	return mcp.NewToolResultText(resultMsg), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "streamsim-aware" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	var b strings.Builder
	b.WriteString(`You are operating a streaming proxy that injects faults into HLS playback.

Variants and the fields each one sends:
`)
	for _, spec := range simulation.Variants() {
		names := make([]string, len(spec.Fields))
		for i, f := range spec.Fields {
			names[i] = string(f)
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", spec.Name, spec.Title, strings.Join(names, ", "))
	}
	b.WriteString(`
Use 'build_payload' to preview a configuration and 'start_simulation' to run it.
Fields that the chosen variant does not use are ignored.
`)

	return mcp.NewGetPromptResult(
		"streamsim-aware",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(b.String())),
		},
	), nil
}

// buildFromArguments runs the tool arguments through the same builder the
// console uses.
func buildFromArguments(request mcp.CallToolRequest) (simulation.Payload, error) {
	b := simulation.NewBuilder()

	variant, err := simulation.ParseVariant(mcp.ParseString(request, "simulate", ""))
	if err != nil {
		return simulation.Payload{}, err
	}
	url := strings.TrimSpace(mcp.ParseString(request, "url", ""))
	if url == "" {
		return simulation.Payload{}, errors.New("url is required")
	}
	if err := b.SetField(string(simulation.FieldURL), url); err != nil {
		return simulation.Payload{}, err
	}

	args := request.GetArguments()
	for _, spec := range simulation.SharedFields() {
		if spec.Kind != simulation.KindInt {
			continue
		}
		raw, ok := args[string(spec.Name)]
		if !ok || raw == nil {
			continue
		}
		text, err := argumentText(spec.Name, raw)
		if err != nil {
			return simulation.Payload{}, err
		}
		if err := b.SetField(string(spec.Name), text); err != nil {
			return simulation.Payload{}, err
		}
	}

	if err := b.SelectVariant(variant); err != nil {
		return simulation.Payload{}, err
	}
	return b.BuildPayload()
}

func argumentText(f simulation.Field, raw any) (string, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return "", &simulation.InvalidFieldValueError{Field: f, Raw: fmt.Sprint(v), Reason: "not a base-10 integer"}
		}
		return strconv.FormatInt(int64(v), 10), nil
	case int:
		return strconv.Itoa(v), nil
	case string:
		return v, nil
	default:
		return "", &simulation.InvalidFieldValueError{Field: f, Raw: fmt.Sprint(v), Reason: "not a base-10 integer"}
	}
}

func variantNames() []string {
	variants := simulation.Variants()
	names := make([]string, len(variants))
	for i, spec := range variants {
		names[i] = string(spec.Name)
	}
	return names
}

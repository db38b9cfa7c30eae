package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kindlingapp/kindling/internal/composer"
	"github.com/kindlingapp/kindling/internal/overlap"
	"github.com/kindlingapp/kindling/internal/pipeline"
	"github.com/kindlingapp/kindling/internal/profile"
	"github.com/kindlingapp/kindling/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Pipeline *pipeline.Engine
	Store    *storage.Store
}

// NewMCPServer creates an MCP server with all kindling tools registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"kindling",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("kindling: conversation starters for networking events. Detect profile overlap and generate ranked opener questions."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("generate_openers",
			mcp.WithDescription("Generate a ranked set of conversation-starter questions for meeting another person at an event. Profiles may be inline JSON objects or handles of saved profiles."),
			mcp.WithString("self", mcp.Description("Your profile as a JSON object (name, role, company, school, interests, goals_next_period, recent_win, help_offers)")),
			mcp.WithString("self_handle", mcp.Description("Handle of a saved profile to use as self")),
			mcp.WithString("other", mcp.Description("The other person's profile as a JSON object; omit for single-profile mode")),
			mcp.WithString("other_handle", mcp.Description("Handle of a saved profile to use as the other person")),
			mcp.WithString("context", mcp.Description("Social context as a JSON object (event_label, event_category, noise_level, time_budget_minutes, conversation_stage, city)")),
			mcp.WithString("preferences", mcp.Description("Preferences as a JSON object (allow_playful, include_favorites, temporal_focus, vulnerability_level)")),
			mcp.WithString("mode", mcp.Description("One of generate_openers, followup_nudge, event_digest_copy, guest_view_copy (default generate_openers)")),
			mcp.WithString("notes", mcp.Description("Free-text context for the generator")),
		),
		mcpGenerateOpeners(deps),
	)

	s.AddTool(
		mcp.NewTool("detect_overlap",
			mcp.WithDescription("Deterministically detect commonalities and complements between two profiles, without calling the generation backend."),
			mcp.WithString("self", mcp.Description("Your profile as a JSON object"), mcp.Required()),
			mcp.WithString("other", mcp.Description("The other person's profile as a JSON object")),
			mcp.WithString("context", mcp.Description("Social context as a JSON object")),
		),
		mcpDetectOverlap(),
	)

	s.AddTool(
		mcp.NewTool("save_profile",
			mcp.WithDescription("Save or update a participant profile under a handle for later reuse."),
			mcp.WithString("handle", mcp.Description("Short unique name for the profile"), mcp.Required()),
			mcp.WithString("profile", mcp.Description("Profile fields as a JSON object"), mcp.Required()),
			mcp.WithString("notes", mcp.Description("Free-text source material, e.g. a resume extract")),
		),
		mcpSaveProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("list_profiles",
			mcp.WithDescription("List saved participant profiles."),
		),
		mcpListProfiles(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"kindling://profiles",
			"Saved Profiles",
			mcp.WithResourceDescription("All saved participant profiles as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfiles(deps),
	)

	return s
}

func mcpGenerateOpeners(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		preq := pipeline.Request{
			Mode:  composer.Mode(req.GetString("mode", "")),
			Notes: req.GetString("notes", ""),
		}

		var err error
		if preq.Self, err = jsonObjectArg(req, "self"); err != nil {
			return mcpError(err.Error()), nil
		}
		if preq.Other, err = jsonObjectArg(req, "other"); err != nil {
			return mcpError(err.Error()), nil
		}
		if preq.Context, err = jsonObjectArg(req, "context"); err != nil {
			return mcpError(err.Error()), nil
		}
		if preq.Preferences, err = jsonObjectArg(req, "preferences"); err != nil {
			return mcpError(err.Error()), nil
		}

		if handle := req.GetString("self_handle", ""); handle != "" {
			rec, notes, err := loadProfileRecord(deps.Store, handle)
			if err != nil {
				return mcpError(fmt.Sprintf("loading profile %q: %v", handle, err)), nil
			}
			preq.Self = rec
			preq.Notes = joinNotes(preq.Notes, notes)
		}
		if handle := req.GetString("other_handle", ""); handle != "" {
			rec, notes, err := loadProfileRecord(deps.Store, handle)
			if err != nil {
				return mcpError(fmt.Sprintf("loading profile %q: %v", handle, err)), nil
			}
			preq.Other = rec
			preq.Notes = joinNotes(preq.Notes, notes)
		}

		if preq.Self == nil {
			return mcpError("self profile is required (pass self or self_handle)"), nil
		}

		set, err := deps.Pipeline.Generate(ctx, preq)
		if err != nil {
			return mcpError(fmt.Sprintf("generation failed: %v", err)), nil
		}

		b, err := json.MarshalIndent(set, "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpDetectOverlap() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		selfRaw, err := req.RequireString("self")
		if err != nil {
			return mcpError("self is required"), nil
		}

		var selfRec map[string]any
		if err := json.Unmarshal([]byte(selfRaw), &selfRec); err != nil {
			return mcpError(fmt.Sprintf("self is not a JSON object: %v", err)), nil
		}

		otherRec, err := jsonObjectArg(req, "other")
		if err != nil {
			return mcpError(err.Error()), nil
		}
		ctxRec, err := jsonObjectArg(req, "context")
		if err != nil {
			return mcpError(err.Error()), nil
		}

		self := profile.NormalizeProfile(selfRec)
		var other *profile.Profile
		if otherRec != nil {
			o := profile.NormalizeProfile(otherRec)
			other = &o
		}
		summary := overlap.Detect(self, other, profile.NormalizeContext(ctxRec))

		b, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSaveProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Store == nil {
			return mcpError("profile storage is not configured"), nil
		}

		handle, err := req.RequireString("handle")
		if err != nil || handle == "" {
			return mcpError("handle is required"), nil
		}
		raw, err := req.RequireString("profile")
		if err != nil {
			return mcpError("profile is required"), nil
		}

		var fields ProfileRequest
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return mcpError(fmt.Sprintf("profile is not a JSON object: %v", err)), nil
		}

		p := storage.StoredProfile{
			ID:              uuid.New().String(),
			Handle:          handle,
			Name:            fields.Name,
			Role:            fields.Role,
			Company:         fields.Company,
			School:          fields.School,
			Interests:       storage.EncodeList(fields.Interests),
			GoalsNextPeriod: storage.EncodeList(fields.GoalsNextPeriod),
			RecentWin:       fields.RecentWin,
			HelpOffers:      storage.EncodeList(fields.HelpOffers),
			Notes:           req.GetString("notes", fields.Notes),
		}
		if err := deps.Store.SaveProfile(p); err != nil {
			return mcpError(fmt.Sprintf("failed to save: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Saved profile %q.", handle)), nil
	}
}

func mcpListProfiles(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Store == nil {
			return mcpError("profile storage is not configured"), nil
		}

		profiles, err := deps.Store.ListProfiles()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list profiles: %v", err)), nil
		}
		if len(profiles) == 0 {
			return mcpText("No saved profiles."), nil
		}

		b, err := json.MarshalIndent(profileRecords(profiles), "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceProfiles(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		if deps.Store == nil {
			return nil, fmt.Errorf("profile storage is not configured")
		}
		profiles, err := deps.Store.ListProfiles()
		if err != nil {
			return nil, fmt.Errorf("listing profiles: %w", err)
		}
		b, err := json.MarshalIndent(profileRecords(profiles), "", "  ")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func profileRecords(profiles []storage.StoredProfile) []map[string]any {
	out := make([]map[string]any, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileResponse(p))
	}
	return out
}

// jsonObjectArg decodes an optional tool argument holding a JSON object.
// Absent or blank arguments return nil without error.
func jsonObjectArg(req mcp.CallToolRequest, key string) (map[string]any, error) {
	raw := req.GetString(key, "")
	if raw == "" {
		return nil, nil
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("%s is not a JSON object: %v", key, err)
	}
	return rec, nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/saudedigital/saude/internal/facilities"
	"github.com/saudedigital/saude/internal/triage"
)

// handleClassifyMessage runs the keyword triage over a message.
func (s *Server) handleClassifyMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	return mcp.NewToolResultText(formatResult(s.engine.Evaluate(text))), nil
}

// handleEmergencyContacts returns the emergency phone directory.
func (s *Server) handleEmergencyContacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatContacts(s.directory.Contacts())), nil
}

// handleFindFacilities searches the facility directory.
func (s *Server) handleFindFacilities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := facilities.Filter{
		Query:      request.GetString("query", ""),
		Type:       facilities.Type(request.GetString("type", "")),
		Specialty:  request.GetString("specialty", ""),
		PublicOnly: request.GetBool("public_only", false),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown facility type %q", filter.Type)), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	found := s.directory.Search(filter)
	if len(found) == 0 {
		return mcp.NewToolResultText("No facilities match. In an emergency call SAMU on 192."), nil
	}
	if len(found) > limit {
		found = found[:limit]
	}

	return mcp.NewToolResultText(formatFacilities(found)), nil
}

// formatResult renders a triage result for AI agent consumption.
func formatResult(res triage.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tier: %s\n", res.Match.Tier)
	if res.Match.Trigger != "" {
		fmt.Fprintf(&sb, "Matched: %q\n", res.Match.Trigger)
	} else {
		sb.WriteString("Matched: (no keyword, default tier)\n")
	}
	if res.Response.Tier.Urgent() {
		fmt.Fprintf(&sb, "Alert: %s\n", res.Response.Alert)
	}

	sb.WriteString("\n")
	sb.WriteString(res.Response.Message)
	sb.WriteString("\n")

	if len(res.Response.Actions) > 0 {
		sb.WriteString("\nActions:\n")
		for _, a := range res.Response.Actions {
			switch a.Effect {
			case triage.EffectDial:
				fmt.Fprintf(&sb, "- %s: %s\n", a.Label, facilities.TelURL(a.Target))
			case triage.EffectOpenFacilityFinder:
				fmt.Fprintf(&sb, "- %s: use find_facilities\n", a.Label)
			}
		}
	}
	return sb.String()
}

func formatContacts(c facilities.Contacts) string {
	var sb strings.Builder
	sb.WriteString("Emergency services:\n")
	for _, svc := range c.Services {
		fmt.Fprintf(&sb, "- %s: %s (%s) %s\n", svc.Name, svc.Number, svc.Call, svc.Hours)
	}

	sb.WriteString("\nHospital emergency rooms:\n")
	for _, h := range c.Hospitals {
		fmt.Fprintf(&sb, "- %s: %s (%s) %s\n", h.Name, h.Phone, h.Links.Call, h.Address)
	}
	return sb.String()
}

func formatFacilities(fs []facilities.Facility) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d facility(ies):\n", len(fs))

	for i, f := range fs {
		links := facilities.LinksFor(f)
		fmt.Fprintf(&sb, "\n--- %d. %s ---\n", i+1, f.Name)
		fmt.Fprintf(&sb, "Type: %s\n", f.Type)
		fmt.Fprintf(&sb, "Distance: %.1f km\n", f.DistanceKM)
		fmt.Fprintf(&sb, "Address: %s\n", f.Address)
		fmt.Fprintf(&sb, "Phone: %s (%s)\n", f.Phone, links.Call)
		fmt.Fprintf(&sb, "Hours: %s\n", f.Hours)
		if len(f.Specialties) > 0 {
			fmt.Fprintf(&sb, "Specialties: %s\n", strings.Join(f.Specialties, ", "))
		}
		if f.Public {
			sb.WriteString("Public (SUS)\n")
		}
		fmt.Fprintf(&sb, "Directions: %s\n", links.Directions)
	}
	return sb.String()
}

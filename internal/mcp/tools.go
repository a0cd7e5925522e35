package mcp

import "github.com/mark3labs/mcp-go/mcp"

// classifyMessageTool defines the classify_message MCP tool.
var classifyMessageTool = mcp.NewTool("classify_message",
	mcp.WithDescription("Classify a patient's message (Portuguese) into an urgency tier and return the triage reply with its suggested actions."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("The message as typed by the patient"),
	),
)

// emergencyContactsTool defines the emergency_contacts MCP tool.
var emergencyContactsTool = mcp.NewTool("emergency_contacts",
	mcp.WithDescription("List public emergency phone lines (SAMU, fire brigade, police, civil defense) and hospital emergency rooms."),
)

// findFacilitiesTool defines the find_facilities MCP tool.
var findFacilitiesTool = mcp.NewTool("find_facilities",
	mcp.WithDescription("Search nearby health facilities by name or address, type and specialty, nearest first."),
	mcp.WithString("query",
		mcp.Description("Free text matched against facility name and address"),
	),
	mcp.WithString("type",
		mcp.Description("Restrict to one facility type"),
		mcp.Enum("hospital", "ubs", "upa", "clinic", "laboratory"),
	),
	mcp.WithString("specialty",
		mcp.Description("Restrict to facilities offering this specialty"),
	),
	mcp.WithBoolean("public_only",
		mcp.Description("Only public (SUS) facilities"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of facilities to return (default 5)"),
	),
)

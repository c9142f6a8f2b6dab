package mcp

import "github.com/mark3labs/mcp-go/mcp"

const userArgDescription = "User key (0x followed by hex digits). Defaults to the active session."

var checkinAddToolDef = mcp.NewTool("checkin_add",
	mcp.WithDescription("Record a capacity check-in. Each score is 0-12 where 12 is full. "+
		"The check-in is classified against the chronologically preceding check-in of the day: "+
		"increase above +0.5, drop below -2.0, otherwise normal."),
	mcp.WithNumber("energy", mcp.Required(), mcp.Min(0), mcp.Max(12), mcp.Description("Energy, 0-12")),
	mcp.WithNumber("attention", mcp.Required(), mcp.Min(0), mcp.Max(12), mcp.Description("Attention, 0-12")),
	mcp.WithNumber("physical", mcp.Required(), mcp.Min(0), mcp.Max(12), mcp.Description("Physical, 0-12")),
	mcp.WithString("journal", mcp.Description("Optional free-text note (markdown)")),
	mcp.WithString("time", mcp.Description("Time of day as HH:MM for backfilling today. Defaults to now.")),
	mcp.WithString("user", mcp.Description(userArgDescription)),
)

var checkinLogToolDef = mcp.NewTool("checkin_log",
	mcp.WithDescription("List today's check-ins, newest first."),
	mcp.WithString("user", mcp.Description(userArgDescription)),
)

var checkinTimelineToolDef = mcp.NewTool("checkin_timeline",
	mcp.WithDescription("Return today's timeline: the hourly expected-capacity baseline (12 at 08:00 down to 0 at 20:00) merged with actual check-ins."),
	mcp.WithString("user", mcp.Description(userArgDescription)),
)

var checkinSummaryToolDef = mcp.NewTool("checkin_summary",
	mcp.WithDescription("Summarize today's check-ins: count, range, mean, increases, drops, and the latest check-in's deviation from the expected baseline."),
	mcp.WithString("user", mcp.Description(userArgDescription)),
)

var checkinExportToolDef = mcp.NewTool("checkin_export",
	mcp.WithDescription("Export every stored check-in for a user to a JSONL file. "+
		"The file must be directly in ~/.captrack/exports or a configured allowed path."),
	mcp.WithString("path", mcp.Description("Destination .jsonl path. Defaults to ~/.captrack/exports/<user>-<timestamp>.jsonl")),
	mcp.WithString("user", mcp.Description(userArgDescription)),
)

var checkinImportToolDef = mcp.NewTool("checkin_import",
	mcp.WithDescription("Import check-ins from a JSONL export. Records whose id is already stored are skipped."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl path")),
	mcp.WithString("user", mcp.Description(userArgDescription)),
)

var checkinPruneToolDef = mcp.NewTool("checkin_prune",
	mcp.WithDescription("Permanently delete a user's check-ins recorded more than N days before today. Today's check-ins are never pruned."),
	mcp.WithNumber("older_than_days", mcp.Min(0), mcp.Description("Age threshold in days. Defaults to prune_after_days from config (30).")),
	mcp.WithString("user", mcp.Description(userArgDescription)),
)

var sessionLoginToolDef = mcp.NewTool("session_login",
	mcp.WithDescription("Make a user key the active session. Keys are unauthenticated identifiers."),
	mcp.WithString("key", mcp.Required(), mcp.Description("User key: 0x followed by hex digits")),
)

var sessionLogoutToolDef = mcp.NewTool("session_logout",
	mcp.WithDescription("Clear the active session. Stored check-ins are kept."),
)

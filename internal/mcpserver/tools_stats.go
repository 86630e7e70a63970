package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerStatsTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"top_total",
			mcp.WithDescription("Players ranked by all-time credited hours"),
			mcp.WithNumber("limit", mcp.Description("Rows, default 30, max 100")),
		),
		s.handleTopTotal,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"player_total",
			mcp.WithDescription("All-time credited hours of one player"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Exact in-game name")),
		),
		s.handlePlayerTotal,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"top_week",
			mcp.WithDescription("Players ranked by credited hours in the running week"),
			mcp.WithNumber("limit", mcp.Description("Rows, default 10, max 100")),
		),
		s.handleTopWeek,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"top_last_week",
			mcp.WithDescription("Archived leaderboard of the last completed week"),
			mcp.WithNumber("limit", mcp.Description("Rows, default 10, max 100")),
		),
		s.handleTopLastWeek,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"online_daily",
			mcp.WithDescription("Distinct players online per hour of day"),
			mcp.WithString("mode", mcp.Description("last24h|today, default last24h")),
		),
		s.handleOnlineDaily,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"online_monthly",
			mcp.WithDescription("Distinct players online per day"),
			mcp.WithNumber("days", mcp.Description("Days ending today, default 30, max 366")),
		),
		s.handleOnlineMonthly,
	)
}

func (s *Server) handleTopTotal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.publicSvc.TopTotal(ctx, request.GetInt("limit", 0))
	return respond(resp, err)
}

func (s *Server) handlePlayerTotal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.publicSvc.PlayerTotal(ctx, request.GetString("name", ""))
	return respond(resp, err)
}

func (s *Server) handleTopWeek(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.publicSvc.TopWeek(ctx, request.GetInt("limit", 0))
	return respond(resp, err)
}

func (s *Server) handleTopLastWeek(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.publicSvc.TopLastWeek(ctx, request.GetInt("limit", 0))
	return respond(resp, err)
}

func (s *Server) handleOnlineDaily(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.publicSvc.OnlineDaily(ctx, request.GetString("mode", ""))
	return respond(resp, err)
}

func (s *Server) handleOnlineMonthly(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.publicSvc.OnlineMonthly(ctx, request.GetInt("days", 0))
	return respond(resp, err)
}

package mcpserver

import (
	"net/http"

	apppublic "farmwatch/internal/app/public"

	"github.com/mark3labs/mcp-go/server"
)

type Server struct {
	publicSvc *apppublic.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(publicSvc *apppublic.Service, version string) *Server {
	mcpSrv := server.NewMCPServer(
		"farmwatch",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s := &Server{
		publicSvc:  publicSvc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerStatsTools()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

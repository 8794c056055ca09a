package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server exposes the consultation tools over MCP
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server and registers every tool
func NewServer(h *Handler, version string) *Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "consult-sync",
		Version: version,
	}, nil)
	registerTools(server, h)
	return &Server{server: server}
}

func registerTools(s *mcp.Server, h *Handler) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_consultations",
		Description: "List the user's consultations in one tab: upcoming (pending and accepted), completed, or cancelled (rejected and cancelled).",
	}, h.ListConsultations)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "accept_consultation",
		Description: "Accept a pending consultation request. Only the assigned expert can accept.",
	}, h.AcceptConsultation)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "reject_consultation",
		Description: "Reject a pending consultation request. This cannot be undone: confirm with the user first and pass confirm=true.",
	}, h.RejectConsultation)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "complete_consultation",
		Description: "Mark an accepted consultation as completed.",
	}, h.CompleteConsultation)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "unread_counts",
		Description: "Get the total unread message count and the count per consultation.",
	}, h.UnreadCounts)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_notifications",
		Description: "List the latest notifications and the unread notification count.",
	}, h.ListNotifications)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "mark_notifications_read",
		Description: "Mark one notification read, or all of them when no ID is given.",
	}, h.MarkNotificationsRead)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_availability",
		Description: "Get the expert's weekly working hours and slot lengths.",
	}, h.GetAvailability)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "availability_slots",
		Description: "List the consultation slots still open for booking on a date.",
	}, h.AvailabilitySlots)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "read_chat",
		Description: "Read the message history of a consultation chat, oldest first.",
	}, h.ReadChat)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "send_message",
		Description: "Send a text message in a consultation chat.",
	}, h.SendMessage)
}

// Run serves MCP over stdin/stdout until ctx is done
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying SDK server
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

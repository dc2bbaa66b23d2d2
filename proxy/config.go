package proxy

import "time"

// Config is the front door configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":3000")
	ListenAddr string

	// Timeout bounds one /chat request, covering conversation creation and
	// the streamed reply. Zero means DefaultTimeout.
	Timeout time.Duration

	// CORSOrigins lists the allowed origins. Empty allows every origin.
	CORSOrigins []string

	// EnableMCP mounts the chat tool at /mcp.
	EnableMCP bool
}

package models

// RendererStats is a snapshot of the shared browser's load.
type RendererStats struct {
	// Running reports whether the Chrome process is connected.
	Running bool `json:"running"`

	// ActiveSessions is the number of per-variant browser contexts
	// currently open. The scan model keeps this at 0 or 1.
	ActiveSessions int `json:"active_sessions"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status   string        `json:"status"`
	Uptime   string        `json:"uptime"`
	Renderer RendererStats `json:"renderer"`
	Version  string        `json:"version"`
}

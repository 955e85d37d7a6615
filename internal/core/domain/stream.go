package domain

import "time"

// Stream controller states.
const (
	StreamStopped = "stopped"
	StreamRunning = "running"
)

// Ingress modes: the in-process generator or a remote event stream.
const (
	ModeSimulation = "simulation"
	ModeLive       = "live"
)

// Connection states for the remote stream source.
const (
	ConnIdle       = "idle"
	ConnConnecting = "connecting"
	ConnConnected  = "connected"
	ConnError      = "error"
)

// Status notification levels.
const (
	StatusInfo    = "info"
	StatusWarning = "warning"
	StatusError   = "error"
)

// StatusEvent is a transient notification surfaced to connected dashboards
// ("connected", "stopped", export notices).
type StatusEvent struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// StreamStatus describes the controller for /api/stream/status.
type StreamStatus struct {
	State      string `json:"state"` // StreamStopped or StreamRunning
	Mode       string `json:"mode"`  // ModeSimulation or ModeLive
	Source     string `json:"source,omitempty"`
	Connection string `json:"connection,omitempty"`
}

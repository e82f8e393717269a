package api

import "time"

// HealthResponse is returned by /healthz
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is returned by /readyz
type ReadyResponse struct {
	Ready         bool     `json:"ready"`
	SignalsLoaded int      `json:"signalsLoaded"`
	Reasons       []string `json:"reasons,omitempty"`
}

// SignalResponse describes one configured signal
type SignalResponse struct {
	Name             string  `json:"name"`
	Owner            string  `json:"owner,omitempty"`
	Description      string  `json:"description,omitempty"`
	SLOTargetPercent float64 `json:"sloTargetPercent"`
}

// StatusResponse describes the latest outcome for one signal
type StatusResponse struct {
	Name        string    `json:"name"`
	SLIValue    float64   `json:"sliValue"`
	IsBad       bool      `json:"isBad"`
	DataQuality string    `json:"dataQuality"`
	Timestamp   time.Time `json:"timestamp"`
	WindowStart time.Time `json:"windowStart"`
	WindowEnd   time.Time `json:"windowEnd"`
}

// RecordResponse is one persisted indicator record
type RecordResponse struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Name        string    `json:"name"`
	SLOTarget   float64   `json:"sloTarget"`
	SLIValue    float64   `json:"sliValue"`
	IsBad       bool      `json:"isBad"`
	Period      string    `json:"period"`
	DataQuality string    `json:"dataQuality"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ErrorResponse carries an error message
type ErrorResponse struct {
	Error string `json:"error"`
}

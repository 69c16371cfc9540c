package dto

import (
	"encoding/json"

	"work-tracker.com/work-tracker/internal/reports"
)

// SyncRequest is the body of POST /sync.
type SyncRequest struct {
	Username string          `json:"username"`
	State    json.RawMessage `json:"state"`
}

// ReportResponse is served by GET /reports/:username.
type ReportResponse struct {
	GeneratedAt string             `json:"generatedAt"`
	Status      reports.LiveStatus `json:"status"`
	Report      reports.Report     `json:"report"`
}

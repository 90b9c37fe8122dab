// Package dto contains data transfer objects crossing the application
// boundary.
package dto

// ApplicationRequest is a submitted application for enabling platform
// capabilities. SystemCode, Dept, and Applicant identify the submitter and
// are not interpreted by validation.
//
// ConfigData maps capability type to that capability's configuration
// block; block values are loosely typed (string, number, bool, list, or
// nested map) as produced by JSON decoding.
type ApplicationRequest struct {
	SystemCode   string         `json:"systemCode"`
	Dept         string         `json:"dept"`
	Applicant    string         `json:"applicant"`
	Capabilities []string       `json:"capabilities"`
	ConfigData   map[string]any `json:"configData"`
}

// SubmitResult reports the outcome of a submission.
type SubmitResult struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

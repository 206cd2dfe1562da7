// Package dto defines request payloads for the v1 API. Responses reuse the
// domain models, which carry their own JSON tags.
package dto

// IDResponse is the standard create response.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is the standard acknowledge response.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

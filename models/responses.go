package models

// SuccessResponse is the envelope every successful JSON response uses:
// {"status": "success", ...payload}. Optional fields collapse away when
// unset so each endpoint only carries what it needs.
type SuccessResponse struct {
	Status string `json:"status"`

	// Results is the item count on list endpoints.
	Results *int `json:"results,omitempty"`

	// Token is the freshly issued session credential on auth endpoints.
	// It is duplicated into the "jwt" cookie for browser clients.
	Token string `json:"token,omitempty"`

	// IsLoggedIn accompanies Token on auth endpoints.
	IsLoggedIn bool `json:"isLoggedIn,omitempty"`

	// Message carries human-readable confirmations (e.g. "token sent to email").
	Message string `json:"message,omitempty"`

	// Data is the endpoint-specific payload, keyed by resource name.
	Data any `json:"data,omitempty"`
}

// NewSuccessResponse builds the plain success envelope around a payload.
func NewSuccessResponse(data any) SuccessResponse {
	return SuccessResponse{Status: "success", Data: data}
}

// NewListResponse builds a success envelope carrying a result count.
func NewListResponse(results int, data any) SuccessResponse {
	return SuccessResponse{Status: "success", Results: &results, Data: data}
}

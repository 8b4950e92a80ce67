package models

// APIStatus enumerates response envelope statuses.
type APIStatus string

const (
	StatusOK    APIStatus = "ok"
	StatusError APIStatus = "error"
)

// APIResponse is the JSON envelope returned by every API endpoint.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success builds a successful response carrying result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(StatusOK), Result: result}
}

// SuccessWithMessage builds a successful response with an informational message.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(StatusOK), Message: message, Result: result}
}

// Error builds an error response with a human-readable message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(StatusError), Message: message}
}

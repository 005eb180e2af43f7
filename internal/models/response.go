package models

// Response is the envelope every API route answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Path    string      `json:"path,omitempty"`
}

func ErrorResponse(message string) Response {
	return Response{Success: false, Message: message}
}

package types

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// MessageResponse is the `{message}` body used by init/update/delete endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse is the `{id}` body returned after a group upload.
type CreatedResponse struct {
	ID string `json:"id"`
}

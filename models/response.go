package models

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Message string `json:"message" example:"Error message describing the issue"`
}

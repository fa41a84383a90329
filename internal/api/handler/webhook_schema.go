package handler

import "time"

// webhookPayload is the body of an identity provider lifecycle delivery.
type webhookPayload struct {
	Type      string          `json:"type"      validate:"required,oneof=user.created user.updated user.deleted"`
	Timestamp time.Time       `json:"timestamp"`
	Data      webhookUserData `json:"data"`
}

type webhookUserData struct {
	ID    string `json:"id"    validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

package models

// WebhookPayload is the subset of a Trello webhook delivery the relay reads.
type WebhookPayload struct {
	Webhook WebhookRef    `json:"webhook"`
	Action  WebhookAction `json:"action"`
}

// WebhookRef identifies the webhook installation that produced the event.
type WebhookRef struct {
	ID string `json:"id"`
}

// WebhookAction describes what happened on the board.
type WebhookAction struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

// WebhookData holds the objects touched by the action.
type WebhookData struct {
	Card WebhookCard `json:"card"`
}

// WebhookCard is the card as embedded in the action data.
type WebhookCard struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ProposalResponse is the uniform envelope returned for every delivery.
type ProposalResponse struct {
	Status         string `json:"status"`
	ErrDescription string `json:"err_description"`
}

// SuccessResponse returns the envelope for a completed or skipped event.
func SuccessResponse() ProposalResponse {
	return ProposalResponse{Status: StatusSuccess}
}

// ErrorResponse returns the envelope for a failed event.
func ErrorResponse(description string) ProposalResponse {
	return ProposalResponse{Status: StatusError, ErrDescription: description}
}

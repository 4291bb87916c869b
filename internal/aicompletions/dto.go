package aicompletions

import "time"

// CreateRequest is the body of POST /ai-completions/transcription/:transcriptionId.
type CreateRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1"`
}

// ValidationMessage reports the empty-prompt message for any prompt rule.
func (CreateRequest) ValidationMessage(field, _ string) (string, bool) {
	if field == "prompt" {
		return "O prompt não pode ser vazio", true
	}
	return "", false
}

// Response is the public completion shape.
type Response struct {
	ID              string    `json:"id"`
	TranscriptionID string    `json:"transcriptionId"`
	Prompt          string    `json:"prompt"`
	Response        string    `json:"response"`
	TokensUsed      *int      `json:"tokensUsed"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ToResponse maps a completion to its public shape.
func ToResponse(c AiCompletion) Response {
	return Response{
		ID:              c.ID,
		TranscriptionID: c.TranscriptionID,
		Prompt:          c.Prompt,
		Response:        c.Response,
		TokensUsed:      c.TokensUsed,
		CreatedAt:       c.CreatedAt,
	}
}

func toResponses(items []AiCompletion) []Response {
	out := make([]Response, 0, len(items))
	for _, c := range items {
		out = append(out, ToResponse(c))
	}
	return out
}

package transcriptions

import "time"

// Response is the JSON shape of a transcription.
type Response struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ToResponse maps a transcription to its JSON shape.
func ToResponse(t Transcription) Response {
	return Response{
		ID:         t.ID,
		DocumentID: t.DocumentID,
		Text:       t.Text,
		CreatedAt:  t.CreatedAt,
	}
}

package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Key         string     `json:"key"`
	MimeType    string     `json:"mimeType"`
	Status      Status     `json:"status"`
	ProcessedAt *time.Time `json:"processedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToResponse maps a document to its JSON shape.
func ToResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:          doc.ID,
		UserID:      doc.UserID,
		Key:         doc.Key,
		MimeType:    doc.MimeType,
		Status:      doc.Status,
		ProcessedAt: doc.ProcessedAt,
		CreatedAt:   doc.CreatedAt,
	}
}

func toResponses(docs []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, ToResponse(doc))
	}
	return out
}

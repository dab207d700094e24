package transcribe

import (
	"context"

	"github.com/google/uuid"
)

// Candidate is one orderable product offered to the extraction service:
// the id it must answer with and the label it matches speech against.
type Candidate struct {
	ID         uuid.UUID `json:"id"`
	LabelForAI string    `json:"label_for_ai"`
}

// ExtractedItem is one confirmed order line the service heard.
type ExtractedItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// OrderExtractor is the narrow boundary to the external speech/LLM service.
// The prompt text and audio handling live entirely on the other side; this
// side only ships bytes and candidates across and reads items back.
type OrderExtractor interface {
	ExtractOrders(ctx context.Context, audio []byte, mimeType string, candidates []Candidate, customPrompt string) ([]ExtractedItem, error)
}

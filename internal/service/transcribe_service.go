package service

import (
	"context"
	"time"

	"backend/internal/auth"
	"backend/internal/notify"
	"backend/internal/repository"
	"backend/internal/transcribe"
	"backend/pkg/apperror"
)

// ExtractedOrderLine is one recognized line item with its product label
// attached for operators reading the notification feed.
type ExtractedOrderLine struct {
	ProductID  string `json:"product_id"`
	LabelForAI string `json:"label_for_ai"`
	Quantity   int    `json:"quantity"`
}

// OrderExtractedEvent is broadcast on the notification hub whenever an audio
// file produced order lines.
type OrderExtractedEvent struct {
	Type       string               `json:"type"`
	Filename   string               `json:"filename"`
	Items      []ExtractedOrderLine `json:"items"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// TranscribeService drives the audio-to-order-lines flow: build the
// candidate product list for the caller's organization, hand the audio to
// the extractor, and broadcast what came back. It creates no orders; a
// human confirms the result first.
type TranscribeService interface {
	ExtractFromAudio(ctx context.Context, identity auth.Identity, audio []byte, mimeType, filename string) ([]ExtractedOrderLine, error)
}

type transcribeService struct {
	products  repository.ProductRepository
	prompts   repository.PromptRepository
	extractor transcribe.OrderExtractor
	hub       *notify.Hub
}

func NewTranscribeService(
	products repository.ProductRepository,
	prompts repository.PromptRepository,
	extractor transcribe.OrderExtractor,
	hub *notify.Hub,
) TranscribeService {
	return &transcribeService{products: products, prompts: prompts, extractor: extractor, hub: hub}
}

func (s *transcribeService) ExtractFromAudio(ctx context.Context, identity auth.Identity, audio []byte, mimeType, filename string) ([]ExtractedOrderLine, error) {
	// An orgless caller has no product catalog; the extractor would have
	// nothing to match against.
	candidates := []transcribe.Candidate{}
	customPrompt := ""

	if identity.OrganizationID != nil {
		products, err := s.products.ListByOrganization(ctx, *identity.OrganizationID)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			candidates = append(candidates, transcribe.Candidate{ID: p.ID, LabelForAI: p.LabelForAI})
		}

		prompt, err := s.prompts.GetByOrganization(ctx, *identity.OrganizationID)
		if err == nil {
			customPrompt = prompt.PromptText
		} else if !apperror.Is(err, apperror.KindNotFound) {
			return nil, err
		}
	}

	items, err := s.extractor.ExtractOrders(ctx, audio, mimeType, candidates, customPrompt)
	if err != nil {
		return nil, err
	}

	labels := make(map[string]string, len(candidates))
	for _, c := range candidates {
		labels[c.ID.String()] = c.LabelForAI
	}

	lines := make([]ExtractedOrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, ExtractedOrderLine{
			ProductID:  item.ProductID.String(),
			LabelForAI: labels[item.ProductID.String()],
			Quantity:   item.Quantity,
		})
	}

	if len(lines) > 0 {
		s.hub.PublishJSON(OrderExtractedEvent{
			Type:       "order_extracted",
			Filename:   filename,
			Items:      lines,
			OccurredAt: time.Now().UTC(),
		})
	}

	return lines, nil
}

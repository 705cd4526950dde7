package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mal-ai/internal/models"
	"mal-ai/internal/prompt"
	"mal-ai/internal/textclean"
)

// TextExtractor turns a bundle of raw documents into one text blob.
type TextExtractor interface {
	Extract(ctx context.Context, docs [][]byte) string
}

// ContentService runs one generation: validate, ingest, build the prompt,
// call the model. It holds no per-request state and is safe for concurrent
// use.
type ContentService struct {
	extractor TextExtractor
	prompts   *prompt.Builder
	ai        Generator
	now       func() time.Time
}

func NewContentService(extractor TextExtractor, prompts *prompt.Builder, ai Generator) *ContentService {
	return &ContentService{
		extractor: extractor,
		prompts:   prompts,
		ai:        ai,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Generate validates req before touching docs or the model. Document
// failures degrade the reference text but never fail the request; model
// failures come back wrapped in ErrGenerationFailed.
func (s *ContentService) Generate(ctx context.Context, req models.GenerationRequest, docs DocumentBundle) (*models.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.Canonical()

	log := zerolog.Ctx(ctx).With().
		Str("mode", string(req.Mode)).
		Str("familiarity", string(req.Familiarity)).
		Int("documents", len(docs)).
		Logger()

	req.ReferenceText = s.ExtractReference(ctx, docs)
	log.Debug().Int("reference_chars", len(req.ReferenceText)).Msg("Reference material prepared")

	text, err := s.prompts.Build(req)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	started := s.now()
	content, err := s.ai.Generate(log.WithContext(ctx), text)
	if err != nil {
		log.Error().Err(err).Msg("Content generation failed")
		return nil, err
	}
	log.Info().Dur("elapsed", s.now().Sub(started)).Msg("Content generated")

	return &models.GenerationResult{
		ID:        uuid.NewString(),
		Request:   req,
		Content:   content,
		Model:     s.ai.Model(),
		CreatedAt: s.now(),
	}, nil
}

// ExtractReference returns the normalized text of docs, or "" when there
// are none.
func (s *ContentService) ExtractReference(ctx context.Context, docs DocumentBundle) string {
	if len(docs) == 0 {
		return ""
	}
	return textclean.Normalize(s.extractor.Extract(ctx, docs))
}

package service

import (
	"context"
	"strings"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/extraction"
	"github.com/trackshelf/trackshelf-backend/pkg/errors"
	"github.com/trackshelf/trackshelf-backend/pkg/logger"
	"github.com/trackshelf/trackshelf-backend/pkg/metrics"
)

// Extraction modes, used as metric labels
const (
	ModeText   = "text"
	ModeSpeech = "speech"
	ModeImage  = "image"
)

// Extractor is the upstream model client. It returns raw model content.
type Extractor interface {
	ParseText(ctx context.Context, text string, today domain.Date) ([]byte, error)
	AnalyzeImage(ctx context.Context, image []byte, mime string, today domain.Date) ([]byte, error)
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// rateLimited is implemented by upstream errors that know about quotas
type rateLimited interface {
	RateLimited() bool
}

// TextExtraction is the result of text or speech input
type TextExtraction struct {
	// Text is the transcript for speech input
	Text string `json:"text,omitempty"`
	extraction.TextResult
	// Draft is a ready-to-save item, present only when something was recognized
	Draft *domain.Item `json:"draft,omitempty"`
}

// ImageExtraction is the result of a photo
type ImageExtraction struct {
	extraction.BatchResult
	Drafts []domain.Item `json:"drafts"`
}

// ExtractionService turns user input into normalized item drafts
type ExtractionService struct {
	extractor  Extractor
	normalizer *extraction.Normalizer
	clock      Clock
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

// NewExtractionService creates a new extraction service. m may be nil.
func NewExtractionService(ext Extractor, n *extraction.Normalizer, clock Clock, m *metrics.Metrics, log *logger.Logger) *ExtractionService {
	return &ExtractionService{
		extractor:  ext,
		normalizer: n,
		clock:      clock,
		metrics:    m,
		logger:     log,
	}
}

// ParseText extracts one item from free text
func (s *ExtractionService) ParseText(ctx context.Context, text string) (*TextExtraction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.BadRequest("text is required")
	}
	return s.parse(ctx, ModeText, text)
}

// Transcribe converts speech to text and extracts one item from it. An empty
// transcript yields the unrecognized defaults.
func (s *ExtractionService) Transcribe(ctx context.Context, audio []byte, filename string) (*TextExtraction, error) {
	if len(audio) == 0 {
		return nil, errors.BadRequest("audio file is required")
	}

	text, err := s.extractor.Transcribe(ctx, audio, filename)
	if err != nil {
		return nil, s.upstreamFailure(ModeSpeech, err)
	}
	if text == "" {
		s.metrics.RecordExtraction(ModeSpeech, "unrecognized", 0)
		return &TextExtraction{TextResult: extraction.TextResult{Record: s.normalizer.Defaults()}}, nil
	}

	res, err := s.parse(ctx, ModeSpeech, text)
	if err != nil {
		return nil, err
	}
	res.Text = text
	return res, nil
}

func (s *ExtractionService) parse(ctx context.Context, mode, text string) (*TextExtraction, error) {
	today := s.clock.Today()
	raw, err := s.extractor.ParseText(ctx, text, today)
	if err != nil {
		return nil, s.upstreamFailure(mode, err)
	}

	res := &TextExtraction{TextResult: s.normalizer.NormalizeText(raw)}
	if !res.Recognized {
		s.logger.Debug().Str("mode", mode).Int("raw_len", len(raw)).Msg("nothing recognized")
		s.metrics.RecordExtraction(mode, "unrecognized", 0)
		return res, nil
	}

	draft := res.Record.ToItem(today)
	res.Draft = &draft
	s.metrics.RecordExtraction(mode, "recognized", 0)
	return res, nil
}

// AnalyzeImage extracts every visible product from a photo
func (s *ExtractionService) AnalyzeImage(ctx context.Context, image []byte, mime string) (*ImageExtraction, error) {
	if len(image) == 0 {
		return nil, errors.BadRequest("image is required")
	}

	today := s.clock.Today()
	raw, err := s.extractor.AnalyzeImage(ctx, image, mime, today)
	if err != nil {
		return nil, s.upstreamFailure(ModeImage, err)
	}

	batch := s.normalizer.NormalizeBatch(raw)
	drafts := make([]domain.Item, len(batch.Items))
	for i, rec := range batch.Items {
		drafts[i] = rec.ToItem(today)
	}

	outcome := "recognized"
	if len(batch.Items) == 0 {
		outcome = "unrecognized"
	}
	s.metrics.RecordExtraction(ModeImage, outcome, batch.Discarded)
	s.logger.Info().Int("items", len(batch.Items)).Int("discarded", batch.Discarded).Msg("image analyzed")

	return &ImageExtraction{BatchResult: batch, Drafts: drafts}, nil
}

// upstreamFailure maps extractor errors: an exhausted quota becomes 429,
// anything else 502.
func (s *ExtractionService) upstreamFailure(mode string, err error) error {
	s.metrics.RecordExtraction(mode, "upstream_error", 0)
	s.logger.Error().Err(err).Str("mode", mode).Msg("extraction upstream failed")

	var rl rateLimited
	if errors.As(err, &rl) && rl.RateLimited() {
		return errors.RateLimited()
	}
	return errors.Upstream("extractor", err)
}

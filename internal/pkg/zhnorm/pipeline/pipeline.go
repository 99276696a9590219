package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"zhnorm/internal/pkg/zhnorm/align"
	"zhnorm/internal/pkg/zhnorm/normalizers"
)

// Result is the outcome of normalizing one text.
type Result struct {
	Original   string            `json:"original"`
	Normalized string            `json:"normalized"`
	Alignments []align.Alignment `json:"alignments"`
}

// OriginalRange maps the normalized rune range [start, end) back to a byte
// range of the original text.
func (r *Result) OriginalRange(start, end int) (align.Alignment, bool) {
	return align.Span(r.Alignments, start, end)
}

func newResult(b *align.Buffer) *Result {
	return &Result{
		Original:   b.Original(),
		Normalized: b.String(),
		Alignments: b.Alignments(),
	}
}

// Pipeline runs a configured normalizer over input texts. It is safe for
// concurrent use; every call works on its own buffer.
type Pipeline struct {
	normalizer normalizers.Normalizer
	workers    int
	logger     zerolog.Logger
}

func New(n normalizers.Normalizer, opts ...Option) (*Pipeline, error) {
	if n == nil {
		return nil, ErrNilNormalizer
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return &Pipeline{
		normalizer: n,
		workers:    cfg.Workers,
		logger:     cfg.logger,
	}, nil
}

func (p *Pipeline) Normalizer() normalizers.Normalizer {
	return p.normalizer
}

// Buffer normalizes text and hands back the buffer itself, for callers that
// keep transforming it.
func (p *Pipeline) Buffer(text string) *align.Buffer {
	b := align.New(text)
	p.normalizer.Normalize(b)
	return b
}

func (p *Pipeline) Normalize(text string) *Result {
	return newResult(p.Buffer(text))
}

func (p *Pipeline) NormalizeString(text string) string {
	return p.Buffer(text).String()
}

// NormalizeBatch normalizes texts concurrently. Results are in input order.
// Texts not yet started when ctx is done are skipped and ctx.Err() is
// returned.
func (p *Pipeline) NormalizeBatch(ctx context.Context, texts []string) ([]*Result, error) {
	results := make([]*Result, len(texts))
	if len(texts) == 0 {
		return results, nil
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, text := range texts {
		if gctx.Err() != nil {
			break
		}
		i, text := i, text
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.Normalize(text)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Debug().
		Int("texts", len(texts)).
		Int("workers", p.workers).
		Dur("elapsed", time.Since(start)).
		Msg("Batch normalized")

	return results, nil
}

// PreTokenize normalizes text and splits the result with pt.
func (p *Pipeline) PreTokenize(text string, pt PreTokenizer) (*Result, []Split, error) {
	b := p.Buffer(text)
	splits, err := pt.PreTokenize(b)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to pre-tokenize: %w", err)
	}
	return newResult(b), splits, nil
}

package extract

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog/log"
)

var (
	ErrNoFallback        = errors.New("dispatcher: fallback extractor is required")
	ErrNilExtractor      = errors.New("dispatcher: nil extractor")
	ErrAmbiguousFallback = errors.New("dispatcher: fallback extractor also listed as specific extractor")
	ErrDuplicateTag      = errors.New("dispatcher: duplicate extractor tag")
)

// Dispatcher routes a URL to the first specific extractor that can handle
// it, or to the fallback. It is immutable after construction.
type Dispatcher struct {
	base
	extractors []Extractor
	fallback   Extractor
}

// NewDispatcher builds a Dispatcher. Extractors are consulted in the given
// order.
func NewDispatcher(fallback Extractor, extractors ...Extractor) (*Dispatcher, error) {
	if fallback == nil {
		return nil, ErrNoFallback
	}
	seen := map[Tag]struct{}{fallback.Tag(): {}}
	for i, e := range extractors {
		if e == nil {
			return nil, fmt.Errorf("%w at position %d", ErrNilExtractor, i)
		}
		if sameExtractor(e, fallback) {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousFallback, fallback.Tag())
		}
		if _, dup := seen[e.Tag()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTag, e.Tag())
		}
		seen[e.Tag()] = struct{}{}
	}
	return &Dispatcher{
		base:       base{tag: TagStrategy},
		extractors: append([]Extractor(nil), extractors...),
		fallback:   fallback,
	}, nil
}

// sameExtractor reports whether a and b are the same value. Values of
// uncomparable types are never the same.
func sameExtractor(a, b Extractor) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// CanHandle is always true; unknown URLs go to the fallback.
func (d *Dispatcher) CanHandle(string) bool { return true }

// Select returns the extractor that Extract would use for rawURL.
func (d *Dispatcher) Select(rawURL string) Extractor {
	for _, e := range d.extractors {
		if e.CanHandle(rawURL) {
			return e
		}
	}
	return d.fallback
}

func (d *Dispatcher) Extract(ctx context.Context, rawURL string) (Extract, error) {
	e := d.Select(rawURL)
	log.Info().Str("url", rawURL).Str("extractor", string(e.Tag())).Msg("extractor selected")
	return e.Extract(ctx, rawURL)
}

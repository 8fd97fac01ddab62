package model

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/generators"
)

// Sequence lazily yields override-applied records. It is not safe for
// concurrent use and cannot be restarted once exhausted.
//
//	for seq.Next() {
//		rec := seq.Record()
//	}
//	if err := seq.Err(); err != nil { ... }
type Sequence struct {
	fixture  string
	schema   *domain.Schema
	refs     []*domain.Schema
	override Override
	quantity int
	faker    Faker
	rng      *rand.Rand
	now      time.Time

	pos     int
	current domain.Record
	err     error
	done    bool
}

// Next fakes the next record. It returns false once quantity records have
// been produced or generation failed; Err tells the two apart.
func (s *Sequence) Next() bool {
	if s.done || s.pos >= s.quantity {
		s.done = true
		s.current = nil
		return false
	}

	i := s.pos
	base, err := s.faker.Fake(s.rng, s.schema, s.refs, generators.GeneratorContext{Index: int64(i), Now: s.now})
	if err != nil {
		s.err = domain.GenerationError("generate", s.fixture, fmt.Errorf("record %d: %w", i, err))
		s.done = true
		s.current = nil
		return false
	}

	s.current = apply(base, s.override.at(i))
	s.pos++
	return true
}

// Record returns the record produced by the last successful Next.
func (s *Sequence) Record() domain.Record { return s.current }

func (s *Sequence) Err() error { return s.err }

// Len is the number of records the sequence yields when it does not fail.
func (s *Sequence) Len() int { return s.quantity }

// Collect drains the sequence.
func (s *Sequence) Collect() ([]domain.Record, error) {
	out := make([]domain.Record, 0, s.quantity-s.pos)
	for s.Next() {
		out = append(out, s.Record())
	}
	if s.err != nil {
		return nil, s.err
	}
	return out, nil
}

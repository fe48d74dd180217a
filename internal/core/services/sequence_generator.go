package services

import (
	"context"
	"fmt"
	"time"

	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
)

// SequenceGenerator produces human-readable instance numbers such as DEP-20260115-0001.
// The day is taken in the business time zone; the counter restarts at 1 every day.
type SequenceGenerator struct {
	loc *time.Location
	now func() time.Time
}

// NewSequenceGenerator returns a generator for loc. A nil now uses time.Now.
func NewSequenceGenerator(loc *time.Location, now func() time.Time) *SequenceGenerator {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &SequenceGenerator{loc: loc, now: now}
}

// Generate reserves the next number for prefix. Call it with the repositories of the
// creating transaction so the reservation rolls back with it.
func (g *SequenceGenerator) Generate(ctx context.Context, repo portsrepo.SequenceRepository, prefix string) (string, error) {
	day := g.now().In(g.loc).Format("20060102")
	n, err := repo.NextSequence(ctx, prefix, day)
	if err != nil {
		return "", fmt.Errorf("failed to reserve %s sequence for %s: %w", prefix, day, err)
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, day, n), nil
}

// Package aggregate merges normalized profiles from multiple sources,
// tolerating individual source failures as long as at least one source
// delivers.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/agentic-research/tabdex/api"
	"github.com/agentic-research/tabdex/internal/logger"
)

// ErrAllSourcesFailed is returned only when every requested source failed.
// A partial failure is a degraded but valid result, not an error.
var ErrAllSourcesFailed = errors.New("all requested sources failed")

// Source delivers normalized profiles from one origin.
type Source interface {
	Name() string
	Profiles(ctx context.Context) ([]api.Profile, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc struct {
	SourceName string
	Fn         func(ctx context.Context) ([]api.Profile, error)
}

func (s SourceFunc) Name() string { return s.SourceName }

func (s SourceFunc) Profiles(ctx context.Context) ([]api.Profile, error) {
	return s.Fn(ctx)
}

// Aggregator fans out to its sources concurrently and concatenates whatever
// succeeded, in the order the sources were given (local before remote).
type Aggregator struct {
	sources []Source
	log     logger.Logger
}

func New(log logger.Logger, sources ...Source) *Aggregator {
	return &Aggregator{sources: sources, log: log}
}

// Aggregate runs every source concurrently. A failing source contributes
// zero profiles and is logged at warn level; it never blocks or aborts the
// others. Only all sources failing is an error.
func (a *Aggregator) Aggregate(ctx context.Context) ([]api.Profile, error) {
	if len(a.sources) == 0 {
		return nil, fmt.Errorf("%w: no sources requested", ErrAllSourcesFailed)
	}

	results := make([][]api.Profile, len(a.sources))
	errs := make([]error, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i], errs[i] = src.Profiles(ctx)
		}(i, src)
	}
	wg.Wait()

	var merged []api.Profile
	failed := 0
	for i, src := range a.sources {
		if errs[i] != nil {
			failed++
			a.log.Warn("source failed, dropping from aggregate",
				logger.String("source", src.Name()),
				logger.Error(errs[i]))
			continue
		}
		merged = append(merged, results[i]...)
	}

	if failed == len(a.sources) {
		return nil, fmt.Errorf("%w: %v", ErrAllSourcesFailed, errs[0])
	}
	return merged, nil
}

// FindGroup flattens all groups across all profiles and returns the first
// one whose name matches exactly (case-sensitive), along with the name of
// the profile that owns it. Duplicate names across sources are not
// disambiguated; first match wins.
func FindGroup(profiles []api.Profile, name string) (api.TabGroup, string, bool) {
	for _, p := range profiles {
		for _, g := range p.TabGroups {
			if g.Name == name {
				return g, p.Name, true
			}
		}
	}
	return api.TabGroup{}, "", false
}

package scanner

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"TechPortfolio/internal/domain"
)

// Page describes a concrete listing endpoint provided by config.
type Page struct {
	Name string
	URL  string
}

// Request carries all parameters required to execute a scan.
type Request struct {
	SiteName string
	Pages    []Page
	Options  map[string]string
}

// Option returns the named option or fallback when unset.
func (r Request) Option(name, fallback string) string {
	if v, ok := r.Options[name]; ok && v != "" {
		return v
	}
	return fallback
}

// Scanner captures a single listing strategy implementation.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.PortfolioItem, error)
}

// ErrUnknownScanner is returned by Resolve for names nobody registered.
var ErrUnknownScanner = errors.New("scanner is not registered")

// Registry maps strategy names, case-insensitively, to implementations.
type Registry struct {
	mu       sync.RWMutex
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry(scanners ...Scanner) *Registry {
	r := &Registry{scanners: map[string]Scanner{}}
	for _, s := range scanners {
		r.Register(s)
	}
	return r
}

// Register adds a strategy, replacing any previous one with the same name.
func (r *Registry) Register(s Scanner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[key(s.Name())] = s
}

// Resolve looks a strategy up by name.
func (r *Registry) Resolve(name string) (Scanner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.scanners[key(name)]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownScanner, name, strings.Join(r.namesLocked(), ", "))
}

// Names lists registered strategies in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

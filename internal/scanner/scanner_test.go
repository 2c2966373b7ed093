package scanner

import (
	"context"
	"errors"
	"testing"

	"TechPortfolio/internal/domain"
)

type stubScanner struct{ name string }

func (s stubScanner) Name() string { return s.name }

func (s stubScanner) Scan(ctx context.Context, req Request) ([]domain.PortfolioItem, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubScanner{name: "listing"})
	reg.Register(stubScanner{name: "feed"})

	if _, err := reg.Resolve("listing"); err != nil {
		t.Fatalf("resolve listing: %v", err)
	}
	if _, err := reg.Resolve(" Listing "); err != nil {
		t.Fatalf("lookup must ignore case and spaces: %v", err)
	}
	if _, err := reg.Resolve("unknown"); !errors.Is(err, ErrUnknownScanner) {
		t.Fatalf("expected ErrUnknownScanner, got %v", err)
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "feed" || names[1] != "listing" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestRequestOption(t *testing.T) {
	t.Parallel()

	req := Request{Options: map[string]string{"itemSelector": "li.tech", "empty": ""}}
	if got := req.Option("itemSelector", "article"); got != "li.tech" {
		t.Fatalf("unexpected option: %s", got)
	}
	if got := req.Option("empty", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for empty option, got %s", got)
	}
	if got := req.Option("missing", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for missing option, got %s", got)
	}
}

func TestNewRegistryWithScanners(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(stubScanner{name: "listing"}, stubScanner{name: "LISTING"})
	if names := reg.Names(); len(names) != 1 || names[0] != "listing" {
		t.Fatalf("expected replacement under one key, got %v", names)
	}
}

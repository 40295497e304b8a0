// Package textsource retrieves claim document text from wherever it was
// captured: object storage dumps, the claim portal, or a chain of both.
package textsource

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a source has no text for the claim.
var ErrNotFound = errors.New("document text not found")

// Source returns the raw document text for one claim number.
type Source interface {
	FetchText(ctx context.Context, claimNumber string) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, claimNumber string) (string, error)

// FetchText calls f.
func (f SourceFunc) FetchText(ctx context.Context, claimNumber string) (string, error) {
	return f(ctx, claimNumber)
}

// Chain tries each source in order. A source answering ErrNotFound passes
// the claim to the next one; any other error stops the chain.
type Chain []Source

// FetchText implements Source.
func (c Chain) FetchText(ctx context.Context, claimNumber string) (string, error) {
	for i, src := range c {
		if src == nil {
			continue
		}
		text, err := src.FetchText(ctx, claimNumber)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("source %d: %w", i, err)
		}
	}
	return "", ErrNotFound
}

// Archiver stores fetched text for later runs.
type Archiver interface {
	SaveText(ctx context.Context, claimNumber, text string) error
}

// Archived copies every text fetched from Source into Archive. Archive
// failures are reported through OnError and do not fail the fetch.
type Archived struct {
	Source  Source
	Archive Archiver
	OnError func(claimNumber string, err error)
}

// FetchText implements Source.
func (a Archived) FetchText(ctx context.Context, claimNumber string) (string, error) {
	text, err := a.Source.FetchText(ctx, claimNumber)
	if err != nil {
		return "", err
	}
	if a.Archive != nil {
		if err := a.Archive.SaveText(ctx, claimNumber, text); err != nil && a.OnError != nil {
			a.OnError(claimNumber, err)
		}
	}
	return text, nil
}

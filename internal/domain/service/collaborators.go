package service

import "context"

// NarrativeGenerator turns a structured prompt into prose. Implementations
// own their retry discipline; a returned error means "no narrative this
// cycle", never a partial result.
type NarrativeGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Publisher posts updates to the outside world and exposes recent posts
// for duplicate suppression.
type Publisher interface {
	Post(ctx context.Context, text string) error
	RecentPosts(ctx context.Context) ([]string, error)
}

package gwosc

import "context"

// Stage names a step of a load.
type Stage string

const (
	StageLinks   Stage = "links"
	StageChunk   Stage = "chunk"
	StageLoaded  Stage = "loaded"
	StageCached  Stage = "cached"
	StageFailure Stage = "failed"
)

// Event reports load progress.
type Event struct {
	Stage Stage  `json:"stage"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
	URL   string `json:"url,omitempty"`
}

// ProgressFunc receives load events. It must not block.
type ProgressFunc func(Event)

type progressKey struct{}

// WithProgress attaches fn to ctx; loads started with the returned context
// report their progress to it.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func report(ctx context.Context, ev Event) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		fn(ev)
	}
}

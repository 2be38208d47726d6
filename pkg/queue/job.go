package queue

import "context"

// Job consumes messages of one type. Name is for logs; Type keys the
// dispatch table.
type Job interface {
	Name() string
	Type() string
	Handle(ctx context.Context, payload interface{}) error
}

package runtime

import "context"

// LineEvent describes one executed line. It is emitted in debug mode only.
type LineEvent struct {
	LineNumber int
	TaskID     int64
	IsTask     bool
	Original   string
	Current    string
}

// Outcome is how a context stopped.
type Outcome struct {
	Message string
	StopAll bool
}

// Console is the blocking input side of the terminal. Both reads return
// when ctx is done; the returned error is then ctx.Err().
type Console interface {
	ReadLine(ctx context.Context) (string, error)
	ReadKey(ctx context.Context) (rune, error)
	Clear() error
}

package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"yesnt/internal/escape"
	"yesnt/internal/source"
	"yesnt/internal/util"
)

// Context is the execution state of one task. Only the goroutine running
// the context touches its variables, labels, functions and search state.
// Stop flags, frames, lines and children are shared with the goroutines that
// stop it and are guarded by mu.
type Context struct {
	sched   *Scheduler
	parent  *Context
	id      int64
	debug   bool
	globals *Globals

	line atomic.Int64

	variables      map[string]string
	labels         map[string]int
	functions      map[string]int
	pendingIn      []string
	out            []string
	searchLabel    string
	searchFunction string
	inFunction     bool

	mu       sync.Mutex
	lines    []source.Line
	frames   []*Frame
	children []*Context
	stopped  bool
	stopAll  bool
	outcome  Outcome

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once
	escalate chan struct{}

	// root only
	emitMu  sync.Mutex
	onLine  func(LineEvent)
	onDebug func(string)
}

func (c *Context) TaskID() int64 {
	if c.parent == nil {
		return 0
	}
	return c.id
}

func (c *Context) IsTask() bool                { return c.parent != nil }
func (c *Context) Debug() bool                 { return c.debug }
func (c *Context) Globals() *Globals           { return c.globals }
func (c *Context) Console() Console            { return c.sched.Console }
func (c *Context) Config() util.Configuration { return c.sched.Config }

// Ctx is cancelled when the context stops.
func (c *Context) Ctx() context.Context { return c.ctx }

// Done is closed once the loop driving the context has returned.
func (c *Context) Done() <-chan struct{} { return c.done }

func (c *Context) finish() {
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *Context) LineNumber() int     { return int(c.line.Load()) }
func (c *Context) SetLineNumber(n int) { c.line.Store(int64(n)) }
func (c *Context) Advance()            { c.line.Add(1) }

func (c *Context) LineCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *Context) Line(i int) (source.Line, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.lines) {
		return source.Line{}, false
	}
	return c.lines[i], true
}

// Variables returns the variable table in scope: the innermost frame's, or
// the top-level table when no call is active.
func (c *Context) Variables() map[string]string {
	if f, ok := c.Frame(); ok {
		return f.Variables
	}
	return c.variables
}

// Labels follows the same scoping as Variables.
func (c *Context) Labels() map[string]int {
	if f, ok := c.Frame(); ok {
		return f.Labels
	}
	return c.labels
}

// Functions is global to the context.
func (c *Context) Functions() map[string]int { return c.functions }

// LookupVariable resolves name in the scoped table and then in globals.
func (c *Context) LookupVariable(name string) (string, bool) {
	if v, ok := c.Variables()[name]; ok {
		return v, true
	}
	return c.globals.Get(name)
}

func (c *Context) PushFrame(f *Frame) {
	c.mu.Lock()
	c.frames = append(c.frames, f)
	c.mu.Unlock()
}

func (c *Context) PopFrame() (*Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return nil, false
	}
	f := c.frames[len(c.frames)-1]
	c.frames = c.frames[:len(c.frames)-1]
	return f, true
}

func (c *Context) Frame() (*Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return nil, false
	}
	return c.frames[len(c.frames)-1], true
}

func (c *Context) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

// PushIn queues a parameter for the next call.
func (c *Context) PushIn(v string) { c.pendingIn = append(c.pendingIn, v) }

// TakeIn hands over and clears the queued parameters.
func (c *Context) TakeIn() []string {
	in := c.pendingIn
	c.pendingIn = nil
	return in
}

// PopIn drains the innermost frame's in channel.
func (c *Context) PopIn() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return "", false
	}
	return popFront(&c.frames[len(c.frames)-1].In)
}

func (c *Context) SetOut(out []string) { c.out = out }
func (c *Context) PopOut() (string, bool) {
	return popFront(&c.out)
}

func (c *Context) SearchLabel() string           { return c.searchLabel }
func (c *Context) SetSearchLabel(name string)    { c.searchLabel = name }
func (c *Context) SearchFunction() string        { return c.searchFunction }
func (c *Context) SetSearchFunction(name string) { c.searchFunction = name }
func (c *Context) SetInFunction(in bool)         { c.inFunction = in }

// DeclaredInFunction reports only the flag set by a function declaration.
func (c *Context) DeclaredInFunction() bool { return c.inFunction }

// IsSearching is true while a jump or call target is pending, or while a
// function body is being skipped outside of any call.
func (c *Context) IsSearching() bool {
	return c.searchLabel != "" || c.searchFunction != "" || (c.inFunction && c.Depth() == 0)
}

// Splice replaces the current line with lines. Recorded positions after the
// current line move with the text, and the pointer is left so that the next
// advance lands on the first spliced line.
func (c *Context) Splice(lines []source.Line) {
	at := c.LineNumber()
	shift := len(lines) - 1
	move := func(i int) int {
		if i > at {
			return i + shift
		}
		return i
	}

	c.mu.Lock()
	c.lines = slices.Concat(c.lines[:at], lines, c.lines[at+1:])
	for _, f := range c.frames {
		f.CallerLine = move(f.CallerLine)
		for k, v := range f.Labels {
			f.Labels[k] = move(v)
		}
	}
	c.mu.Unlock()

	for k, v := range c.labels {
		c.labels[k] = move(v)
	}
	for k, v := range c.functions {
		c.functions[k] = move(v)
	}
	c.SetLineNumber(at - 1)
}

// Spawn starts a task that runs a copy of this context's lines from the
// current line, with that line replaced by residual.
func (c *Context) Spawn(residual string) *Context {
	at := c.LineNumber()

	c.mu.Lock()
	lines := source.Clone(c.lines)
	if at < len(lines) {
		lines[at].Content = residual
	}
	child := c.sched.newContext(lines, c, c.debug, c.globals)
	child.SetLineNumber(at)
	parentStopped := c.stopAll
	if !parentStopped {
		c.children = append(c.children, child)
	}
	c.mu.Unlock()

	if parentStopped {
		child.Exit("Parent task was terminated!", true)
		child.finish()
		return child
	}
	c.sched.start(child)
	return child
}

func (c *Context) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

func (c *Context) StopAll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopAll
}

func (c *Context) Outcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// Exit stops the context. Only the first call writes a diagnostic. With
// stopAll every child is stopped and the request is passed to the parent.
func (c *Context) Exit(message string, stopAll bool) {
	c.mu.Lock()
	first := !c.stopped
	var diagnostic string
	if first {
		c.stopped = true
		c.outcome = Outcome{Message: message}
		diagnostic = c.diagnosticLocked(message)
	}
	cascade := stopAll && !c.stopAll
	var children []*Context
	if cascade {
		c.stopAll = true
		c.outcome.StopAll = true
		children = slices.Clone(c.children)
	}
	c.mu.Unlock()

	if first {
		c.cancel()
		slog.Debug("context stopped",
			slog.Int64("task", c.TaskID()),
			slog.String("message", message),
			slog.Bool("stop-all", stopAll))
		c.WriteLine(diagnostic, true)
	}

	if !cascade {
		return
	}
	for _, child := range children {
		child.Exit("Terminated by parent task", true)
	}
	if c.parent != nil {
		select {
		case c.escalate <- struct{}{}:
		default:
		}
	}
}

func (c *Context) diagnosticLocked(message string) string {
	who := "The process"
	if c.parent != nil {
		who = fmt.Sprintf("Task: %d", c.id)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s was terminated at line %d with the message: %s]", who, c.line.Load()+1, message)
	for i := len(c.frames) - 1; i >= 0; i-- {
		at := c.frames[i].CallerLine
		file, line := source.MemoryFile, at+1
		if at >= 0 && at < len(c.lines) {
			file, line = c.lines[at].FileName, c.lines[at].Index+1
		}
		fmt.Fprintf(&b, "\n    at %s:%d", file, line)
	}
	return b.String()
}

// Sleep blocks for d or until the context stops.
func (c *Context) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-c.ctx.Done():
	}
}

func (c *Context) suppressed(force bool) bool {
	if force {
		return false
	}
	if c.Stopped() {
		return true
	}
	return c.parent != nil && c.parent.StopAll()
}

func (c *Context) Write(text string, force bool) {
	if c.suppressed(force) {
		return
	}
	text = escape.Decode(text)
	if c.debug {
		c.root().emitDebug(text)
		return
	}
	c.sched.write(text)
}

func (c *Context) WriteLine(text string, force bool) {
	c.Write(text+"\n", force)
}

// SetSubscribers installs the observers of line events and debug output.
// They are only consulted on the root context.
func (c *Context) SetSubscribers(onLine func(LineEvent), onDebug func(string)) {
	c.emitMu.Lock()
	c.onLine, c.onDebug = onLine, onDebug
	c.emitMu.Unlock()
}

// LineExecuted forwards ev to the root context's subscriber.
func (c *Context) LineExecuted(ev LineEvent) {
	r := c.root()
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	if r.onLine != nil {
		r.onLine(ev)
	}
}

func (c *Context) emitDebug(text string) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if c.onDebug != nil {
		c.onDebug(text)
	}
}

func (c *Context) root() *Context {
	r := c
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Children returns the tasks spawned by this context.
func (c *Context) Children() []*Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.children)
}

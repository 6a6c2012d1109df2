package runtime

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"yesnt/internal/source"
	"yesnt/internal/util"
)

// Runner drives a context until it stops or runs out of lines.
type Runner func(c *Context)

// Scheduler owns everything a task tree shares: the output writer, the
// console, the task id counter and the goroutines running spawned tasks.
type Scheduler struct {
	Config  util.Configuration
	Console Console

	run    Runner
	nextID atomic.Int64
	wg     sync.WaitGroup

	outMu sync.Mutex
	out   io.Writer
}

func NewScheduler(out io.Writer, console Console, config util.Configuration, run Runner) *Scheduler {
	return &Scheduler{
		Config:  config,
		Console: console,
		run:     run,
		out:     out,
	}
}

// NewRoot creates the top-level context of a run with fresh globals.
func (s *Scheduler) NewRoot(lines []source.Line, debug bool) *Context {
	return s.newContext(lines, nil, debug, NewGlobals())
}

// Run drives c on the calling goroutine.
func (s *Scheduler) Run(c *Context) Outcome {
	defer c.finish()
	s.run(c)
	return c.Outcome()
}

// Wait blocks until every spawned task and its watcher have returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) newContext(lines []source.Line, parent *Context, debug bool, globals *Globals) *Context {
	ctx, cancel := context.WithCancel(context.Background())
	return &Context{
		sched:     s,
		parent:    parent,
		id:        s.nextID.Add(1),
		debug:     debug,
		globals:   globals,
		lines:     lines,
		variables: make(map[string]string),
		labels:    make(map[string]int),
		functions: make(map[string]int),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		escalate:  make(chan struct{}, 1),
	}
}

func (s *Scheduler) start(child *Context) {
	slog.Debug("task started",
		slog.Int64("task", child.id),
		slog.Int("line", child.LineNumber()+1))

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		defer child.finish()
		s.run(child)
	}()
	go func() {
		defer s.wg.Done()
		s.watch(child)
	}()
}

// watch forwards a child's stop-all request to its parent. A request that
// races with the child finishing is still delivered.
func (s *Scheduler) watch(child *Context) {
	select {
	case <-child.escalate:
	case <-child.done:
		select {
		case <-child.escalate:
		default:
			return
		}
	}
	child.parent.Exit("Terminated by child task", true)
}

func (s *Scheduler) write(text string) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if _, err := io.WriteString(s.out, text); err != nil {
		slog.Warn("error writing output", slog.Any("error", err))
	}
}

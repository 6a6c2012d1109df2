package engine

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"yesnt/internal/runtime"
	"yesnt/internal/source"
	"yesnt/internal/statement"
	"yesnt/internal/util"
)

type Options struct {
	Config  util.Configuration
	Out     io.Writer
	Console runtime.Console
}

// Interpreter runs scripts against a statement table. Each run starts from
// a fresh root context; tasks spawned by a run share its globals.
type Interpreter struct {
	registry *statement.Registry
	sched    *runtime.Scheduler

	mu      sync.Mutex
	root    *runtime.Context
	onLine  func(runtime.LineEvent)
	onDebug func(string)
}

func New(registry *statement.Registry, opts Options) *Interpreter {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	in := &Interpreter{registry: registry}
	in.sched = runtime.NewScheduler(opts.Out, opts.Console, opts.Config, in.loop)
	return in
}

// OnLineExecuted subscribes fn to line events of debug runs, including the
// events of spawned tasks.
func (in *Interpreter) OnLineExecuted(fn func(runtime.LineEvent)) {
	in.mu.Lock()
	in.onLine = fn
	in.mu.Unlock()
}

// OnDebugOutput receives script output of debug runs instead of the output
// writer.
func (in *Interpreter) OnDebugOutput(fn func(string)) {
	in.mu.Lock()
	in.onDebug = fn
	in.mu.Unlock()
}

func (in *Interpreter) newRoot(lines []source.Line, debug bool) *runtime.Context {
	root := in.sched.NewRoot(lines, debug)

	in.mu.Lock()
	root.SetSubscribers(in.onLine, in.onDebug)
	in.root = root
	in.mu.Unlock()
	return root
}

// Run executes lines on the calling goroutine and returns how the root
// context stopped. With WaitTasks set it also waits for spawned tasks.
func (in *Interpreter) Run(lines []source.Line, debug bool) runtime.Outcome {
	root := in.newRoot(lines, debug)
	slog.Debug("run started", slog.Int("lines", len(lines)), slog.Bool("debug", debug))

	outcome := in.sched.Run(root)
	if in.sched.Config.WaitTasks {
		in.sched.Wait()
	}
	slog.Debug("run finished",
		slog.String("message", outcome.Message),
		slog.Bool("stop-all", outcome.StopAll),
		slog.Int("tasks", len(root.Children())))
	return outcome
}

func (in *Interpreter) RunLines(texts []string, debug bool) runtime.Outcome {
	return in.Run(source.FromStrings(texts...), debug)
}

func (in *Interpreter) RunFile(path string, debug bool) runtime.Outcome {
	lines, err := source.LoadFile(path)
	if err != nil {
		slog.Warn("error loading script", slog.String("file", path), slog.Any("error", err))
		root := in.newRoot(nil, debug)
		if source.IsNotFound(err) {
			root.Exit(fmt.Sprintf("File %q not found!", path), true)
		} else {
			root.Exit(fmt.Sprintf("Could not load file %q", path), true)
		}
		return root.Outcome()
	}
	return in.Run(lines, debug)
}

// Stop terminates the current run and all of its tasks.
func (in *Interpreter) Stop() {
	in.mu.Lock()
	root := in.root
	in.mu.Unlock()
	if root != nil {
		root.Exit("Terminated by external process", true)
	}
}

// Wait blocks until every task spawned so far has returned.
func (in *Interpreter) Wait() {
	in.sched.Wait()
}

// Root returns the context of the most recent run.
func (in *Interpreter) Root() *runtime.Context {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.root
}

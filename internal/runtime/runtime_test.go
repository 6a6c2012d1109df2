package runtime

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"yesnt/internal/source"
	"yesnt/internal/util"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitForStop(c *Context) {
	<-c.Ctx().Done()
}

func newTestScheduler(out *syncBuffer) *Scheduler {
	return NewScheduler(out, nil, util.DefaultConfiguration(), waitForStop)
}

func TestGlobals(t *testing.T) {
	g := NewGlobals()
	g.Set("a", "1")
	g.Set("a", "2")

	if v, ok := g.Get("a"); !ok || v != "2" {
		t.Errorf("expected last write to win, got %q %v", v, ok)
	}
	if !g.Delete("a") {
		t.Error("expected delete to report an existing key")
	}
	if g.Delete("a") {
		t.Error("expected second delete to report a missing key")
	}

	g.Set("b", "x")
	snap := g.Snapshot()
	g.Set("b", "y")
	if snap["b"] != "x" || len(snap) != 1 {
		t.Errorf("snapshot should not follow later writes: %v", snap)
	}
}

func TestGlobalsConcurrent(t *testing.T) {
	g := NewGlobals()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				g.Set("k", "v")
				g.Get("k")
			}
		}()
	}
	wg.Wait()
	if n := len(g.Snapshot()); n != 1 {
		t.Errorf("expected one key, got %d", n)
	}
}

func TestExitIsIdempotent(t *testing.T) {
	out := &syncBuffer{}
	root := newTestScheduler(out).NewRoot(source.FromStrings("cwl a"), false)

	root.Exit("first", false)
	root.Exit("second", false)
	root.WriteLine("after stop", false)

	got := out.String()
	if strings.Count(got, "was terminated") != 1 {
		t.Errorf("expected exactly one diagnostic, got %q", got)
	}
	if !strings.Contains(got, "[The process was terminated at line 1 with the message: first]") {
		t.Errorf("unexpected diagnostic %q", got)
	}
	if strings.Contains(got, "after stop") {
		t.Error("expected writes after stop to be suppressed")
	}
	if o := root.Outcome(); o.Message != "first" || o.StopAll {
		t.Errorf("unexpected outcome %+v", o)
	}
}

func TestDiagnosticListsFrames(t *testing.T) {
	out := &syncBuffer{}
	root := newTestScheduler(out).NewRoot(source.FromStrings("cal f", "cal g", "lbl x"), false)
	root.PushFrame(NewFrame(0, nil))
	root.PushFrame(NewFrame(1, nil))
	root.SetLineNumber(2)

	root.Exit("boom", true)

	expected := "\n[The process was terminated at line 3 with the message: boom]\n    at #Memory#:2\n    at #Memory#:1\n"
	if got := out.String(); got != expected {
		t.Errorf("got %q, want %q", got, expected)
	}
}

func TestCascade(t *testing.T) {
	out := &syncBuffer{}
	sched := newTestScheduler(out)
	root := sched.NewRoot(source.FromStrings("a", "b"), false)

	first := root.Spawn("a")
	second := root.Spawn("a")

	first.Exit("Planned termination by code. Canceling all tasks", true)

	done := make(chan struct{})
	go func() {
		sched.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tasks did not stop")
	}

	if !root.Stopped() || !second.Stopped() {
		t.Fatal("expected the whole tree to stop")
	}
	if o := root.Outcome(); o.Message != "Terminated by child task" || !o.StopAll {
		t.Errorf("unexpected root outcome %+v", o)
	}
	if o := second.Outcome(); o.Message != "Terminated by parent task" {
		t.Errorf("unexpected sibling outcome %+v", o)
	}

	got := out.String()
	if n := strings.Count(got, "was terminated"); n != 3 {
		t.Errorf("expected 3 diagnostics, got %d: %q", n, got)
	}
}

func TestSpawnAfterStopAll(t *testing.T) {
	out := &syncBuffer{}
	root := newTestScheduler(out).NewRoot(source.FromStrings("a"), false)
	root.Exit("stop", true)

	child := root.Spawn("a")
	if o := child.Outcome(); o.Message != "Parent task was terminated!" {
		t.Errorf("unexpected outcome %+v", o)
	}
	if len(root.Children()) != 0 {
		t.Error("expected the child not to be adopted")
	}
}

func TestTaskIDs(t *testing.T) {
	out := &syncBuffer{}
	sched := newTestScheduler(out)
	root := sched.NewRoot(source.FromStrings("a"), false)
	a := root.Spawn("a")
	b := root.Spawn("a")
	defer func() {
		root.Exit("done", true)
		sched.Wait()
	}()

	if root.TaskID() != 0 {
		t.Errorf("expected root id 0, got %d", root.TaskID())
	}
	if a.TaskID() == 0 || b.TaskID() <= a.TaskID() {
		t.Errorf("expected increasing task ids, got %d and %d", a.TaskID(), b.TaskID())
	}
}

func TestScoping(t *testing.T) {
	out := &syncBuffer{}
	root := newTestScheduler(out).NewRoot(source.FromStrings("a"), false)
	root.Variables()["x"] = "top"
	root.Globals().Set("g", "global")

	root.PushFrame(NewFrame(0, []string{"1", "2"}))
	if _, ok := root.LookupVariable("x"); ok {
		t.Error("expected top-level variable hidden inside a frame")
	}
	if v, _ := root.LookupVariable("g"); v != "global" {
		t.Errorf("expected global fallback, got %q", v)
	}
	if v, _ := root.PopIn(); v != "1" {
		t.Errorf("expected first pushed parameter first, got %q", v)
	}

	root.PopFrame()
	if v, _ := root.LookupVariable("x"); v != "top" {
		t.Errorf("expected top-level variable, got %q", v)
	}
}

func TestSearching(t *testing.T) {
	out := &syncBuffer{}
	root := newTestScheduler(out).NewRoot(source.FromStrings("a"), false)

	if root.IsSearching() {
		t.Fatal("fresh context should not search")
	}
	root.SetInFunction(true)
	if !root.IsSearching() {
		t.Error("function body outside a call should be skipped")
	}
	root.PushFrame(NewFrame(0, nil))
	if root.IsSearching() {
		t.Error("function body inside a call should run")
	}
	root.SetSearchLabel("x")
	if !root.IsSearching() {
		t.Error("pending label should search")
	}
}

func TestSplice(t *testing.T) {
	out := &syncBuffer{}
	root := newTestScheduler(out).NewRoot(source.FromStrings("lbl a", "imp x", "lbl b"), false)
	root.Labels()["a"] = 0
	root.Labels()["b"] = 2
	root.Functions()["f"] = 2
	root.SetLineNumber(1)

	root.Splice(source.FromStrings("cwl 1", "cwl 2", "cwl 3"))

	if root.LineCount() != 5 {
		t.Fatalf("expected 5 lines, got %d", root.LineCount())
	}
	if root.Labels()["a"] != 0 || root.Labels()["b"] != 4 || root.Functions()["f"] != 4 {
		t.Errorf("unexpected positions: labels %v functions %v", root.Labels(), root.Functions())
	}
	if root.LineNumber() != 0 {
		t.Errorf("expected pointer before the splice, got %d", root.LineNumber())
	}
	if l, _ := root.Line(1); l.Content != "cwl 1" {
		t.Errorf("unexpected spliced line %+v", l)
	}
}

func TestDebugOutputReachesRoot(t *testing.T) {
	out := &syncBuffer{}
	sched := newTestScheduler(out)
	root := sched.NewRoot(source.FromStrings("a"), true)

	var mu sync.Mutex
	var debug []string
	var events []LineEvent
	root.SetSubscribers(func(ev LineEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}, func(s string) {
		mu.Lock()
		debug = append(debug, s)
		mu.Unlock()
	})

	child := root.Spawn("a")
	child.WriteLine("from task", false)
	child.LineExecuted(LineEvent{LineNumber: 1, TaskID: child.TaskID(), IsTask: true})
	root.Exit("done", true)
	sched.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(debug) == 0 || debug[0] != "from task\n" {
		t.Errorf("unexpected debug output %q", debug)
	}
	if len(events) != 1 || !events[0].IsTask {
		t.Errorf("unexpected events %+v", events)
	}
	if out.String() != "" {
		t.Errorf("expected nothing on the output writer in debug mode, got %q", out.String())
	}
}

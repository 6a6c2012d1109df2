package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const clearScreen = "\033[H\033[2J"

type input struct {
	r   rune
	err error
}

// Terminal reads script input from a single reader. One goroutine pumps
// runes from the reader so that a read abandoned on cancellation does not
// lose what the user types next.
type Terminal struct {
	in  io.Reader
	out io.Writer

	inFd   int
	inTerm bool
	clear  bool

	once  sync.Once
	runes chan input
}

// New attaches to the process terminal.
func New(in, out *os.File) *Terminal {
	t := NewReader(in, out)
	t.inFd = int(in.Fd())
	t.inTerm = term.IsTerminal(t.inFd)
	t.clear = term.IsTerminal(int(out.Fd()))
	return t
}

// NewReader reads from any reader. Raw key reads and screen clearing are
// disabled.
func NewReader(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:    in,
		out:   out,
		runes: make(chan input),
	}
}

func (t *Terminal) pump() {
	r := bufio.NewReader(t.in)
	for {
		c, _, err := r.ReadRune()
		if err != nil {
			t.runes <- input{err: err}
			close(t.runes)
			return
		}
		t.runes <- input{r: c}
	}
}

func (t *Terminal) next(ctx context.Context) (rune, error) {
	t.once.Do(func() { go t.pump() })
	select {
	case in, ok := <-t.runes:
		if !ok {
			return 0, io.EOF
		}
		return in.r, in.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// ReadLine returns the next line without its terminator. It returns io.EOF
// when the input ends before a line starts.
func (t *Terminal) ReadLine(ctx context.Context) (string, error) {
	var b strings.Builder
	for {
		r, err := t.next(ctx)
		if err == io.EOF && b.Len() > 0 {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		if r == '\n' {
			return strings.TrimSuffix(b.String(), "\r"), nil
		}
		b.WriteRune(r)
	}
}

// ReadKey returns a single key press, switching the terminal to raw mode for
// the duration of the read.
func (t *Terminal) ReadKey(ctx context.Context) (rune, error) {
	if t.inTerm {
		state, err := term.MakeRaw(t.inFd)
		if err != nil {
			slog.Warn("error entering raw mode", slog.Any("error", err))
		} else {
			defer term.Restore(t.inFd, state)
		}
	}
	return t.next(ctx)
}

func (t *Terminal) Clear() error {
	if !t.clear {
		return nil
	}
	_, err := io.WriteString(t.out, clearScreen)
	return err
}

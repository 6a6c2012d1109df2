package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
)

// ErrNotFound is returned when the executable cannot be located.
var ErrNotFound = errors.New("executable not found")

// Output is one non-blank line written by the process.
type Output struct {
	Text   string
	Stderr bool
}

type Result struct {
	ExitCode int
	Lines    []Output
}

// Run starts name with args and blocks until it exits. Every non-blank line
// of stdout and stderr is collected in arrival order and handed to onLine,
// which is never called concurrently.
func Run(name string, args []string, onLine func(Output)) (Result, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	cmd := exec.Command(path, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, err
	}

	if err := cmd.Start(); err != nil {
		return Result{}, err
	}
	slog.Debug("process started", slog.String("name", path), slog.Int("pid", cmd.Process.Pid))

	var (
		mu     sync.Mutex
		result Result
		wg     sync.WaitGroup
	)
	collect := func(r io.Reader, isErr bool) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			text := strings.TrimSuffix(scanner.Text(), "\r")
			if strings.TrimSpace(text) == "" {
				continue
			}
			out := Output{Text: text, Stderr: isErr}
			mu.Lock()
			result.Lines = append(result.Lines, out)
			if onLine != nil {
				onLine(out)
			}
			mu.Unlock()
		}
	}

	wg.Add(2)
	go collect(stdout, false)
	go collect(stderr, true)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, err
		}
	}

	result.ExitCode = cmd.ProcessState.ExitCode()
	slog.Debug("process exited", slog.String("name", path), slog.Int("code", result.ExitCode))
	return result, nil
}

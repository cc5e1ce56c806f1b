package tools

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"wallcrop/internal/services"
)

// Executor abstracts command execution for testability. onStdout and
// onStderr receive one line at a time; either may be nil.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error
}

// CommandExecutor runs real processes.
type CommandExecutor struct{}

// Run starts binary, streams its output line by line and waits for it to exit.
func (CommandExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, binary, "start", "", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once
	var lastErrLine string
	var lastMu sync.Mutex

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			if forward != nil {
				forward(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() { scanErr = err })
			// Keep the pipe drained so the child cannot block on a full buffer.
			_, _ = io.Copy(io.Discard, r)
		}
	}
	recordErr := func(line string) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lastMu.Lock()
			lastErrLine = trimmed
			lastMu.Unlock()
		}
		if onStderr != nil {
			onStderr(line)
		}
	}

	wg.Add(2)
	go scan(stdout, onStdout)
	go scan(stderr, recordErr)
	wg.Wait()

	waitErr := cmd.Wait()
	if scanErr != nil {
		return services.Wrap(services.ErrExternalTool, binary, "read output", "", scanErr)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return services.Wrap(services.ErrExternalTool, binary, "wait",
				fmt.Sprintf("exit status %d: %s", exitErr.ExitCode(), lastErrLine), waitErr)
		}
		return services.Wrap(services.ErrExternalTool, binary, "wait", "", waitErr)
	}
	return nil
}

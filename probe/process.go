package probe

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/e14z/mcpcrawl/log"
	"github.com/morikuni/failure/v2"
)

const (
	// DefaultGracePeriod is how long Spawn waits after starting a process
	// before considering it up. Servers that die on a missing credential
	// usually do so well within this window.
	DefaultGracePeriod = 3 * time.Second

	// terminateWait is how long Terminate waits after SIGTERM before SIGKILL
	terminateWait = 1 * time.Second
)

// Supervisor spawns launch commands as child processes
type Supervisor struct {
	// GracePeriod overrides DefaultGracePeriod when positive
	GracePeriod time.Duration
}

// NewSupervisor creates a supervisor with the default grace period
func NewSupervisor() *Supervisor {
	return &Supervisor{GracePeriod: DefaultGracePeriod}
}

// Handle owns one running child process. It is created by Supervisor.Spawn,
// used by a single Session for one connection attempt, and reaped by
// Terminate. A Handle is never shared across attempts.
type Handle struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	// done is closed once the process has been reaped
	done chan struct{}

	mu         sync.Mutex
	stderr     strings.Builder
	exitCode   int
	terminated bool
}

// SplitCommand splits a launch command into an executable and its arguments
// using whitespace rules. Quoting is not supported: a command that needs a
// space inside one argument cannot be expressed, which is an accepted
// limitation of the launch-command format.
func SplitCommand(command string) []string {
	return strings.Fields(command)
}

// Spawn starts the given launch command and waits the grace period before
// handing the process over. If the process exits within the grace period,
// Spawn returns ErrProcessExitedEarly; the returned handle is already reaped
// in that case and remains valid only for reading captured diagnostics.
func (s *Supervisor) Spawn(ctx context.Context, command string) (*Handle, error) {
	fields := SplitCommand(command)
	if len(fields) == 0 {
		return nil, failure.New(ErrSpawnFailed,
			failure.Message("Empty launch command"),
		)
	}

	log.Debug("Spawning server process", "command", fields[0], "args", fields[1:])

	cmd := exec.Command(fields[0], fields[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, failure.New(ErrSpawnFailed,
			failure.Message("Failed to open stdin pipe"),
			failure.Context{"command": command, "cause": err.Error()},
		)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, failure.New(ErrSpawnFailed,
			failure.Message("Failed to open stdout pipe"),
			failure.Context{"command": command, "cause": err.Error()},
		)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, failure.New(ErrSpawnFailed,
			failure.Message("Failed to open stderr pipe"),
			failure.Context{"command": command, "cause": err.Error()},
		)
	}

	if err := cmd.Start(); err != nil {
		return nil, failure.New(ErrSpawnFailed,
			failure.Message("Failed to start server process"),
			failure.Context{"command": command, "cause": err.Error()},
		)
	}

	h := &Handle{
		cmd:      cmd,
		stdin:    stdin,
		stdout:   bufio.NewReader(stdout),
		done:     make(chan struct{}),
		exitCode: -1,
	}

	go h.readStderr(stderr)
	go h.watch()

	grace := s.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	select {
	case <-h.done:
		return h, failure.New(ErrProcessExitedEarly,
			failure.Message("Server process exited during startup grace period"),
			failure.Context{
				"command":   command,
				"exit_code": strconv.Itoa(h.ExitCode()),
			},
		)
	case <-ctx.Done():
		h.Terminate()
		return h, failure.Wrap(ctx.Err(),
			failure.Context{"command": command},
		)
	case <-time.After(grace):
		return h, nil
	}
}

// Alive returns true while the process has not been reaped
func (h *Handle) Alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// ExitCode returns the process exit code, or -1 while it is still running
func (h *Handle) ExitCode() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode
}

// Stderr returns all diagnostic text captured from the process so far
func (h *Handle) Stderr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stderr.String()
}

// PeekStderr returns diagnostic text captured so far, waiting at most the
// given duration for text to appear when none is buffered yet. The wait is
// bounded so the peek can never stall the request/response cadence.
func (h *Handle) PeekStderr(wait time.Duration) string {
	if s := h.Stderr(); s != "" {
		return s
	}
	select {
	case <-h.done:
	case <-time.After(wait):
	}
	return h.Stderr()
}

// Terminate stops the process: SIGTERM, a short wait, then SIGKILL if it is
// still alive. It is idempotent and never returns an error; termination is
// best-effort cleanup and failures are only logged.
func (h *Handle) Terminate() {
	h.mu.Lock()
	if h.terminated {
		h.mu.Unlock()
		return
	}
	h.terminated = true
	h.mu.Unlock()

	select {
	case <-h.done:
		// already exited and reaped
		return
	default:
	}

	if h.cmd.Process == nil {
		return
	}

	if err := h.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		log.Debug("SIGTERM failed", "pid", h.cmd.Process.Pid, "error", err)
	}

	select {
	case <-h.done:
	case <-time.After(terminateWait):
		if err := h.cmd.Process.Kill(); err != nil {
			log.Warn("Force kill failed", "pid", h.cmd.Process.Pid, "error", err)
		}
		<-h.done
	}
}

// readStderr drains the diagnostic stream into the handle's buffer
func (h *Handle) readStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		h.mu.Lock()
		h.stderr.WriteString(scanner.Text())
		h.stderr.WriteString("\n")
		h.mu.Unlock()
	}
}

// watch reaps the process and records its exit code
func (h *Handle) watch() {
	_ = h.cmd.Wait()
	h.mu.Lock()
	if h.cmd.ProcessState != nil {
		h.exitCode = h.cmd.ProcessState.ExitCode()
	}
	h.mu.Unlock()
	close(h.done)
}

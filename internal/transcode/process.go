package transcode

import (
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// killGracePeriod is how long Stop waits after SIGTERM before escalating.
const killGracePeriod = 3 * time.Second

// Process supervises one running ffmpeg invocation. A background reaper
// goroutine waits on the child so liveness checks never block and the process
// table entry is collected promptly.
type Process struct {
	cmd *exec.Cmd

	mu      sync.Mutex
	exited  bool
	exitErr error
	stopped bool
}

func newProcess(cmd *exec.Cmd) *Process {
	return &Process{cmd: cmd}
}

func (p *Process) start() error {
	if err := p.cmd.Start(); err != nil {
		return err
	}

	go func() {
		err := p.cmd.Wait()
		p.mu.Lock()
		p.exited = true
		p.exitErr = err
		p.mu.Unlock()
	}()

	return nil
}

// Alive reports whether the process is still running.
func (p *Process) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.exited
}

// ExitErr returns the exit error recorded by the reaper: nil while the process
// runs or after a zero exit, non-nil after a failed or killed encode.
func (p *Process) ExitErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.exited {
		return nil
	}
	return p.exitErr
}

// Stop terminates the process: SIGTERM immediately, SIGKILL after a grace
// period if it is still alive. Best-effort and non-blocking; Stop returns
// without waiting for the process to die, and is safe to call on a process
// that has already exited or was already stopped.
func (p *Process) Stop() {
	p.mu.Lock()
	if p.stopped || p.exited {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	_ = p.cmd.Process.Signal(syscall.SIGTERM)

	go func() {
		time.Sleep(killGracePeriod)
		if p.Alive() {
			_ = p.cmd.Process.Kill()
		}
	}()
}

package shell

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"
)

// OSProcess implements Process for real OS processes.
type OSProcess struct {
	Cmd *exec.Cmd
}

func (p *OSProcess) Wait() error {
	return p.Cmd.Wait()
}

func (p *OSProcess) Kill() error {
	if p.Cmd.Process != nil {
		return p.Cmd.Process.Kill()
	}
	return nil
}

func (p *OSProcess) Signal(sig os.Signal) error {
	if p.Cmd.Process != nil {
		return p.Cmd.Process.Signal(sig)
	}
	return nil
}

// OSProcessFactory starts processes with os/exec. Output is written straight
// into the collectors in opts.
type OSProcessFactory struct{}

func (OSProcessFactory) Start(_ context.Context, command []string, opts ProcessOptions) (Process, error) {
	if len(command) == 0 {
		return nil, ErrEmptyCommand
	}

	// Cancellation is handled by ExecuteWithTimeout so the process gets a
	// chance to shut down gracefully.
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env
	cmd.Stdin = nil
	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	}
	if opts.Stderr != nil {
		cmd.Stderr = opts.Stderr
	}
	cmd.WaitDelay = opts.WaitDelay

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &OSProcess{Cmd: cmd}, nil
}

// ExecuteWithTimeout waits for proc. On timeout it sends an interrupt, waits
// up to grace for the process to exit and then kills it. On cancellation it
// kills immediately.
func ExecuteWithTimeout(ctx context.Context, timeout, grace time.Duration, proc Process) error {
	done := make(chan error, 1)
	go func() {
		done <- proc.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = proc.Kill()
		<-done
		return ctx.Err()
	case <-timer.C:
		_ = proc.Signal(os.Interrupt)

		select {
		case <-done:
			return ErrTimeout
		case <-time.After(grace):
			_ = proc.Kill()
			<-done
			return ErrTimeout
		}
	}
}

// ExitCode extracts the exit code from a Wait error: 0 for nil, the
// process's code for an exit error, -1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}

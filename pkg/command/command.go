// Package command wraps external process invocation for the build script,
// the container runtime and the reverse proxy. Every call carries a context
// deadline and output capture is bounded so a chatty subprocess cannot
// exhaust memory.
package command

import (
	"context"
	"os/exec"
)

// DefaultMaxOutputBytes caps combined stdout/stderr capture per invocation
const DefaultMaxOutputBytes = 1 << 20 // 1 MiB

// Runner executes an external command and returns its combined output
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec with bounded output capture
type ExecRunner struct {
	MaxOutputBytes int
}

// NewExecRunner creates an ExecRunner with the default output cap
func NewExecRunner() *ExecRunner {
	return &ExecRunner{MaxOutputBytes: DefaultMaxOutputBytes}
}

// Run executes the command and returns up to MaxOutputBytes of combined
// output. The returned output is valid even when err is non-nil.
func (r *ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	limit := r.MaxOutputBytes
	if limit <= 0 {
		limit = DefaultMaxOutputBytes
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}

	buf := &boundedBuffer{limit: limit}
	cmd.Stdout = buf
	cmd.Stderr = buf

	err := cmd.Run()
	if ctx.Err() != nil {
		// Prefer the deadline/cancellation cause over the generic "signal: killed"
		err = ctx.Err()
	}
	return buf.Bytes(), err
}

// boundedBuffer keeps the first limit bytes and silently drops the rest
type boundedBuffer struct {
	limit int
	data  []byte
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if remaining := b.limit - len(b.data); remaining > 0 {
		if len(p) > remaining {
			b.data = append(b.data, p[:remaining]...)
		} else {
			b.data = append(b.data, p...)
		}
	}
	// Report full writes so the subprocess never sees a pipe error
	return len(p), nil
}

func (b *boundedBuffer) Bytes() []byte {
	return b.data
}

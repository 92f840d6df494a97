// Package deliver adapts an external command as the delivery sink. The
// command receives the video link and the destination; the actual transfer
// mechanics live entirely outside this module.
package deliver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"vodsync/engine"
	"vodsync/internal/logx"
)

const defaultTimeout = 2 * time.Hour

// ErrNoCommand indicates no delivery command was configured.
var ErrNoCommand = errors.New("deliver: no delivery command configured")

// ExecSink invokes a configured external command for each delivery:
//
//	<command> --target <dest> [--no-audio] [--collection] [--cookies] <link>
type ExecSink struct {
	// Command is the delivery executable.
	Command string
	// Timeout bounds one delivery. Defaults to 2 hours; transfers of long
	// videos are slow.
	Timeout time.Duration
	Log     *logx.Logger
}

// Deliver runs the command once. Any failure is returned to the caller as a
// hard error; the driver never marks the entry delivered in that case.
func (s *ExecSink) Deliver(ctx context.Context, link, target string, opts engine.DeliverOptions) error {
	if s.Command == "" {
		return ErrNoCommand
	}

	args := buildArgs(link, target, opts)

	timeout := s.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.Log.Debugf("exec %s %s", s.Command, strings.Join(args, " "))
	cmd := exec.CommandContext(cmdCtx, s.Command, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cmdCtx.Err() != nil {
			return fmt.Errorf("deliver: %s: %w", link, cmdCtx.Err())
		}
		return fmt.Errorf("deliver: %s: %w: %s", link, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func buildArgs(link, target string, opts engine.DeliverOptions) []string {
	args := []string{"--target", target}
	if !opts.IncludeAudio {
		args = append(args, "--no-audio")
	}
	if opts.Collection {
		args = append(args, "--collection")
	}
	if opts.UseCookies {
		args = append(args, "--cookies")
	}
	return append(args, link)
}

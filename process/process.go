package process

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Options controls how a command is executed.
type Options struct {
	// Sudo prefixes the command with sudo when the current user is not root.
	Sudo bool

	// Shell runs the command through "/bin/sh -c" instead of splitting it
	// into an argument vector.
	Shell bool

	// Timeout aborts the command after the given duration. Zero means no
	// timeout.
	Timeout time.Duration

	// IgnoreStatus suppresses the error normally returned for a non-zero
	// exit status.
	IgnoreStatus bool

	// Verbose logs the command output line counts and exit status.
	Verbose bool
}

// Result holds the outcome of an executed command.
type Result struct {
	Command    string
	Stdout     string
	Stderr     string
	ExitStatus int
	Duration   time.Duration
}

// Combined returns stdout and stderr concatenated, the way output scrapers
// expect it.
func (r *Result) Combined() string {
	return r.Stdout + r.Stderr
}

// CmdError is returned when a command exits with a non-zero status and
// IgnoreStatus was not set.
type CmdError struct {
	Result *Result
}

func (e *CmdError) Error() string {
	return fmt.Sprintf("command %q failed with exit status %d", e.Result.Command, e.Result.ExitStatus)
}

// Runner executes commands on a host, local or remote.
type Runner interface {
	Run(cmd string, opts Options) (*Result, error)
}

// Local runs commands on the host the harness itself runs on.
type Local struct{}

func (Local) Run(cmd string, opts Options) (*Result, error) {
	cmdline := cmd
	if opts.Sudo && os.Geteuid() != 0 {
		cmdline = "sudo " + cmdline
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var c *exec.Cmd
	if opts.Shell {
		c = exec.CommandContext(ctx, "/bin/sh", "-c", cmdline)
	} else {
		args := strings.Fields(cmdline)
		c = exec.CommandContext(ctx, args[0], args[1:]...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	log.WithField("cmd", cmdline).Debug("running command")
	start := time.Now()
	err := c.Run()

	result := &Result{
		Command:  cmd,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return result, err
		}
		result.ExitStatus = exitErr.ExitCode()
	}

	if opts.Verbose {
		log.WithFields(log.Fields{
			"cmd":     cmdline,
			"status":  result.ExitStatus,
			"elapsed": result.Duration,
		}).Info("command finished")
	}

	if result.ExitStatus != 0 && !opts.IgnoreStatus {
		return result, &CmdError{Result: result}
	}
	return result, nil
}

// Run executes cmd locally with the given options.
func Run(cmd string, opts Options) (*Result, error) {
	return Local{}.Run(cmd, opts)
}

// System executes cmd through r and only reports whether it succeeded.
func System(r Runner, cmd string, opts Options) bool {
	_, err := r.Run(cmd, opts)
	return err == nil
}

// HasCommand reports whether the named tool is available on the host driven
// by r.
func HasCommand(r Runner, name string) bool {
	_, err := r.Run("command -v "+name, Options{Shell: true, IgnoreStatus: false})
	return err == nil
}

package process

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

// SSH runs commands on a remote host over an SSH connection, so the harness
// can drive a machine other than the one it runs on.
type SSH struct {
	client *ssh.Client
}

// NewSSH dials addr (host:port) as user, authenticating with the private key
// stored at keyPath.
func NewSSH(addr, user, keyPath string) (*SSH, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("ssh: could not read private key: %v", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("ssh: could not parse private key: %v", err)
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         30 * time.Second,
	}

	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("ssh: could not dial %s: %v", addr, err)
	}
	return &SSH{client: client}, nil
}

func (s *SSH) Run(cmd string, opts Options) (*Result, error) {
	cmdline := cmd
	if opts.Sudo {
		cmdline = "sudo " + cmdline
	}
	if opts.Shell {
		cmdline = "/bin/sh -c " + shellQuote(cmdline)
	}

	session, err := s.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("ssh: could not open session: %v", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	log.WithField("cmd", cmdline).Debug("running remote command")
	start := time.Now()

	err = session.Start(cmdline)
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	if opts.Timeout > 0 {
		select {
		case err = <-done:
		case <-time.After(opts.Timeout):
			session.Signal(ssh.SIGKILL)
			err = <-done
		}
	} else {
		err = <-done
	}

	result := &Result{
		Command:  cmd,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		exitErr, ok := err.(*ssh.ExitError)
		if !ok {
			return result, err
		}
		result.ExitStatus = exitErr.ExitStatus()
	}

	if opts.Verbose {
		log.WithFields(log.Fields{
			"cmd":     cmdline,
			"status":  result.ExitStatus,
			"elapsed": result.Duration,
		}).Info("remote command finished")
	}

	if result.ExitStatus != 0 && !opts.IgnoreStatus {
		return result, &CmdError{Result: result}
	}
	return result, nil
}

// Close shuts the underlying SSH connection down.
func (s *SSH) Close() error {
	return s.client.Close()
}

func shellQuote(s string) string {
	return "'" + strings.Replace(s, "'", `'\''`, -1) + "'"
}

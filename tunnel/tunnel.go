// Package tunnel controls an external OpenVPN style tunnel program.
// It only manages the process (spawn, readiness, teardown) and never
// implements any tunneling itself.
package tunnel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/util"
)

type State string

const (
	StateDisconnected      State = "disconnected"
	StateConnecting        State = "connecting"
	StateConnected         State = "connected"
	StateReconnecting      State = "reconnecting"
	StateAuthFailed        State = "auth_failed"
	StateConnectionRefused State = "connection_refused"
	StateError             State = "error"
)

var (
	ErrExecutableNotFound = errors.New("tunnel program binary not found")
	ErrTimeout            = errors.New("timed out waiting for tunnel to connect")
	ErrAuthFailed         = errors.New("tunnel authentication failed")
	ErrConnectionRefused  = errors.New("tunnel server refused connection")
)

const DEFAULT_BINARY = "openvpn"
const CONNECT_TIMEOUT = time.Second * 30
const STOP_TIMEOUT = time.Second * 5 // Interrupt => Kill escalation delay

type Controller struct {
	cfg    *config.VpnConfig
	binary string // resolved fullpath of the tunnel program

	mu       sync.Mutex
	state    State
	cmd      *exec.Cmd
	authFile string
	waitDone chan struct{} // closed when the current process has been reaped
}

type Status struct {
	State  State  `json:"state"`
	Pid    int    `json:"pid"`
	Binary string `json:"binary"`
	Config string `json:"config"`
}

// NewController probes the tunnel program binary and returns a controller for
// it. The tunnel process itself is not started until Connect.
func NewController(cfg *config.VpnConfig) (*Controller, error) {
	if cfg == nil {
		cfg = &config.VpnConfig{}
	}
	name := util.FirstNonZeroArg(cfg.Binary, DEFAULT_BINARY)
	binary, err := util.LookPathWithSelfDir(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrExecutableNotFound, name, err)
	}
	return &Controller{
		cfg:    cfg,
		binary: binary,
		state:  StateDisconnected,
	}, nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Status() *Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	status := &Status{
		State:  c.state,
		Binary: c.binary,
		Config: c.cfg.Config,
	}
	if c.cmd != nil && c.cmd.Process != nil &&
		(c.cmd.ProcessState == nil || !c.cmd.ProcessState.Exited()) {
		status.Pid = c.cmd.Process.Pid
	}
	return status
}

// Map a tunnel program output line to a state transition.
func parseStateLine(line string) (State, bool) {
	switch {
	case strings.Contains(line, "Initialization Sequence Completed"):
		return StateConnected, true
	case strings.Contains(line, "AUTH_FAILED"):
		return StateAuthFailed, true
	case strings.Contains(line, "Connection refused") || strings.Contains(line, "ECONNREFUSED"):
		return StateConnectionRefused, true
	case strings.Contains(line, "SIGUSR1[soft") || strings.Contains(line, "process restarting"):
		return StateReconnecting, true
	}
	return "", false
}

// Connect spawns the tunnel process and blocks until it reports readiness,
// fails, or CONNECT_TIMEOUT passes. It's a no-op if the tunnel is already
// connected or connecting.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateConnected, StateConnecting, StateReconnecting:
		c.mu.Unlock()
		return nil
	}
	authFile, err := c.writeAuthFile()
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to write auth file: %w", err)
	}
	args := []string{}
	if c.cfg.Config != "" {
		args = append(args, "--config", c.cfg.Config)
	}
	if authFile != "" {
		args = append(args, "--auth-user-pass", authFile)
	}
	// Never let the tunnel take over the default route. Only traffic that is
	// explicitly routed (via config) goes through it.
	args = append(args, "--route-nopull", "--pull-filter", "ignore", "redirect-gateway")
	args = append(args, c.cfg.Args...)

	pr, pw := io.Pipe()
	cmd := exec.Command(c.binary, args...)
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		if authFile != "" {
			os.Remove(authFile)
		}
		c.state = StateError
		c.mu.Unlock()
		return fmt.Errorf("failed to start %q: %w", c.binary, err)
	}
	log.Infof("tunnel process started: %s (pid %d)", c.binary, cmd.Process.Pid)
	waitDone := make(chan struct{})
	c.state = StateConnecting
	c.cmd = cmd
	c.authFile = authFile
	c.waitDone = waitDone
	c.mu.Unlock()

	go c.scanOutput(cmd, pr)
	go c.reap(cmd, pw, authFile, waitDone)

	deadline := time.After(CONNECT_TIMEOUT)
	for {
		select {
		case <-ctx.Done():
			c.Disconnect()
			return ctx.Err()
		case <-deadline:
			c.Disconnect()
			c.setState(StateError)
			return ErrTimeout
		case <-time.After(time.Millisecond * 200):
		}
		switch state := c.State(); state {
		case StateConnected:
			// The probe is best-effort: the tunnel stays connected even when its
			// local proxy endpoint is unreachable, requests then go out directly.
			if err := c.probe(ctx); err != nil {
				log.Warnf("tunnel connected but degraded: %v", err)
			}
			return nil
		case StateAuthFailed:
			c.stop(cmd, waitDone)
			return ErrAuthFailed
		case StateConnectionRefused:
			c.stop(cmd, waitDone)
			return ErrConnectionRefused
		case StateError:
			return fmt.Errorf("tunnel process exited unexpectedly")
		}
	}
}

// Disconnect stops the tunnel process and releases it. It is idempotent:
// disconnecting a non-connected tunnel is a no-op.
func (c *Controller) Disconnect() error {
	c.mu.Lock()
	cmd := c.cmd
	waitDone := c.waitDone
	c.cmd = nil
	c.state = StateDisconnected
	c.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	c.stop(cmd, waitDone)
	return nil
}

// Ask the process to exit, escalating to Kill after STOP_TIMEOUT.
func (c *Controller) stop(cmd *exec.Cmd, waitDone chan struct{}) {
	if cmd.ProcessState != nil && cmd.ProcessState.Exited() {
		return
	}
	// Signal(os.Interrupt) is not implemented on Windows
	if runtime.GOOS == "windows" {
		cmd.Process.Kill()
	} else if err := cmd.Process.Signal(os.Interrupt); err != nil {
		cmd.Process.Kill()
	}
	if waitDone == nil {
		return
	}
	select {
	case <-waitDone:
	case <-time.After(STOP_TIMEOUT):
		log.Warnf("tunnel process did not exit in %s, killing it", STOP_TIMEOUT)
		cmd.Process.Kill()
		<-waitDone
	}
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// Write username & password to a temp file that the tunnel program reads
// credentials from. CreateTemp creates the file with 0600 perms. The file is
// removed as soon as the process exits.
func (c *Controller) writeAuthFile() (string, error) {
	if c.cfg.Username == "" && c.cfg.Password == "" {
		return "", nil
	}
	file, err := os.CreateTemp("", "erolauncher-auth-*")
	if err != nil {
		return "", err
	}
	defer file.Close()
	if _, err = fmt.Fprintf(file, "%s\n%s\n", c.cfg.Username, c.cfg.Password); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

// Scan process output lines and apply state transitions.
func (c *Controller) scanOutput(cmd *exec.Cmd, pr *io.PipeReader) {
	scanner := bufio.NewScanner(pr)
	for scanner.Scan() {
		line := scanner.Text()
		log.Debugf("tunnel: %s", line)
		state, ok := parseStateLine(line)
		if !ok {
			continue
		}
		c.mu.Lock()
		// Stale lines of an already released process must not revive the state.
		if c.cmd == cmd {
			log.Infof("tunnel state: %s => %s", c.state, state)
			c.state = state
		}
		c.mu.Unlock()
	}
}

// Reap the process once it exits: close the output pipe, remove the auth
// file, flag unexpected exits.
func (c *Controller) reap(cmd *exec.Cmd, pw *io.PipeWriter, authFile string, waitDone chan struct{}) {
	err := cmd.Wait()
	pw.Close()
	if authFile != "" {
		os.Remove(authFile)
	}
	c.mu.Lock()
	if c.cmd == cmd {
		switch c.state {
		case StateConnecting, StateConnected, StateReconnecting:
			log.Warnf("tunnel process exited unexpectedly: %v", err)
			c.state = StateError
		}
		c.cmd = nil
	}
	c.mu.Unlock()
	close(waitDone)
}

// If ProbeAddr is configured, dial it until it accepts or ctx is done.
// Some tunnel sidecars open their local port slightly after reporting success.
func (c *Controller) probe(ctx context.Context) error {
	if c.cfg.ProbeAddr == "" {
		return nil
	}
	deadline := time.After(time.Second * 10)
	var lastErr error
	for {
		conn, err := net.DialTimeout("tcp", c.cfg.ProbeAddr, time.Millisecond*200)
		if err == nil {
			conn.Close()
			return nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("tunnel probe addr %q not ready: %w", c.cfg.ProbeAddr, lastErr)
		case <-time.After(time.Millisecond * 100):
		}
	}
}

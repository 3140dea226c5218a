// Package plugin implements the plugin host (spec.md §4.7): supervised
// child processes speaking line-delimited JSON-RPC 2.0 over stdin/stdout,
// capability-gated dispatch, and a restart policy with exponential backoff.
//
// Grounded on original_source/src-tauri/src/plugins/mod.rs's
// PLUGIN_REGISTRY/PluginProcess/spawn_core_plugin/call_core_plugin_raw_with_timeout
// — translated from the Rust's static-registry-plus-mutex shape into a Go
// struct holding its own sync.Mutex, per the teacher's general pattern of
// wrapping shared mutable state in a dedicated type rather than a package
// global. No library in the example pack covers raw line-delimited
// child-process IPC, so this package is the deliberate stdlib (os/exec,
// bufio) exception noted in SPEC_FULL.md §B.
package plugin

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

// Sentinel error-kind strings, surfaced verbatim per spec.md §7.
const (
	ErrAlreadyRunning      = "already_running"
	ErrNotRunning          = "not_running"
	ErrNotFound            = "not_found"
	ErrForbidden           = "forbidden"
	ErrForbiddenNetDomain  = "forbidden_net_domain"
	ErrForbiddenFSRoot     = "forbidden_fs_root"
	ErrInvalidRequest      = "invalid_request"
	ErrStdinClosed         = "stdin_closed"
	ErrStdoutClosed        = "stdout_closed"
	ErrTimeout             = "timeout"
	ErrMaxRestartsExceeded = "max_restarts_exceeded"
)

const defaultCallTimeout = 5 * time.Second

// Spec is the launch descriptor for a core plugin child process.
type Spec struct {
	Name string
	Exec string
	Args []string
	Env  []string
}

// Permissions mirrors the DB-backed permission document (spec.md §4.7 step 1
// and step 3): a plugin row's `enabled` flag plus a tree of granted method
// capabilities, the net domain allowlist, and the fs root allowlist.
type Permissions struct {
	CoreCall       bool
	FSRead         bool
	FSWrite        bool
	NetRequest     bool
	DBQuery        bool
	DBWrite        bool
	AIInvoke       bool
	ScannerRegister bool
	NetDomains     []string
	FSRoots        []string
}

type process struct {
	cmd          *exec.Cmd
	stdin        io.WriteCloser
	stdout       *bufio.Reader
	stdoutCloser io.Closer
	spec         Spec
	restartCount int
	maxRestarts  int
	backoff      time.Duration
}

// Host supervises the plugin registry. The registry mutex is distinct from
// the store's transaction mutex; per spec.md §5 the two are never held
// simultaneously except during brief lookups, always registry→DB order.
type Host struct {
	mu          sync.Mutex
	procs       map[string]*process
	CallTimeout time.Duration
	Stderr      func(name, line string)
}

// NewHost returns an empty plugin registry.
func NewHost() *Host {
	return &Host{
		procs:       make(map[string]*process),
		CallTimeout: defaultCallTimeout,
	}
}

// Spawn starts a core plugin child process with stdin/stdout/stderr piped.
// Duplicate names are rejected (spec.md §4.7 "Spawn").
func (h *Host) Spawn(spec Spec) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.procs[spec.Name]; ok {
		return errKind(ErrAlreadyRunning)
	}
	p, err := h.start(spec)
	if err != nil {
		return err
	}
	h.procs[spec.Name] = p
	return nil
}

func (h *Host) start(spec Spec) (*process, error) {
	cmd := exec.Command(spec.Exec, spec.Args...)
	cmd.Env = spec.Env

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("spawn_failed: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("spawn_failed: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("spawn_failed: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn_failed: %w", err)
	}

	go h.drainStderr(spec.Name, stderr)

	return &process{
		cmd:          cmd,
		stdin:        stdin,
		stdout:       bufio.NewReader(stdout),
		stdoutCloser: stdout,
		spec:         spec,
		maxRestarts:  3,
		backoff:      200 * time.Millisecond,
	}, nil
}

// drainStderr is the long-lived logger thread spec.md §4.7 describes:
// "Stderr is drained by a dedicated logger thread that timestamps lines."
func (h *Host) drainStderr(name string, r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if h.Stderr != nil {
			h.Stderr(name, sc.Text())
		}
	}
}

// Shutdown sends a graceful termination signal, waits up to 5s, then kills.
func (h *Host) Shutdown(name string) error {
	h.mu.Lock()
	p, ok := h.procs[name]
	if ok {
		delete(h.procs, name)
	}
	h.mu.Unlock()

	if !ok {
		return errKind(ErrNotFound)
	}
	return terminate(p)
}

// List reports every registered plugin's name, pid, and liveness.
type Status struct {
	Name    string
	PID     int
	Running bool
}

func (h *Host) List() []Status {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Status, 0, len(h.procs))
	for name, p := range h.procs {
		running := p.cmd.ProcessState == nil
		out = append(out, Status{Name: name, PID: p.cmd.Process.Pid, Running: running})
	}
	return out
}

// CallRaw runs the full dispatch algorithm of spec.md §4.7 "Call" steps 1-8
// against a plugin identified by name, given its DB-backed permission
// record and a raw JSON-RPC request line.
func (h *Host) CallRaw(ctx context.Context, name string, perms Permissions, line string) (json.RawMessage, error) {
	if !perms.CoreCall {
		return nil, errKind(ErrForbidden)
	}

	var envelope struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal([]byte(line), &envelope); err != nil || envelope.Method == "" {
		return nil, errKind(ErrInvalidRequest)
	}

	if err := checkMethodPermission(envelope.Method, perms); err != nil {
		return nil, err
	}
	if strings.HasPrefix(envelope.Method, "net.request") {
		if err := checkNetDomain(envelope.Params, perms.NetDomains); err != nil {
			return nil, err
		}
	}
	if strings.HasPrefix(envelope.Method, "fs.") {
		if err := checkFSRoot(envelope.Params, perms.FSRoots); err != nil {
			return nil, err
		}
	}

	timeout := h.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return h.roundTrip(ctx, name, line, timeout)
}

// checkMethodPermission implements the fixed method-prefix table of
// spec.md §4.7 step 3.
func checkMethodPermission(method string, perms Permissions) error {
	switch {
	case strings.HasPrefix(method, "fs.write"):
		if !perms.FSWrite {
			return errKind(ErrForbidden)
		}
	case strings.HasPrefix(method, "fs."):
		if !perms.FSRead {
			return errKind(ErrForbidden)
		}
	case strings.HasPrefix(method, "net.request"):
		if !perms.NetRequest {
			return errKind(ErrForbidden)
		}
	case strings.HasPrefix(method, "db.write"):
		if !perms.DBWrite {
			return errKind(ErrForbidden)
		}
	case strings.HasPrefix(method, "db."):
		if !perms.DBQuery {
			return errKind(ErrForbidden)
		}
	case strings.HasPrefix(method, "ai.invoke"):
		if !perms.AIInvoke {
			return errKind(ErrForbidden)
		}
	case strings.HasPrefix(method, "scanner.register"):
		if !perms.ScannerRegister {
			return errKind(ErrForbidden)
		}
	}
	return nil
}

// checkNetDomain implements spec.md §4.7 step 4: naive host extraction
// ("after //, up to / or :"), exact case-insensitive match or a
// leading-dot suffix match against the allowlist.
func checkNetDomain(params json.RawMessage, allowed []string) error {
	var p struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(params, &p)
	host := extractHost(p.URL)
	host = strings.ToLower(host)
	for _, domain := range allowed {
		d := strings.ToLower(domain)
		if d == host {
			return nil
		}
		if strings.HasPrefix(d, ".") && strings.HasSuffix(host, d) {
			return nil
		}
	}
	return errKind(ErrForbiddenNetDomain)
}

func extractHost(raw string) string {
	s := raw
	if idx := strings.Index(s, "//"); idx >= 0 {
		s = s[idx+2:]
	}
	if idx := strings.IndexAny(s, "/:"); idx >= 0 {
		s = s[:idx]
	}
	return s
}

// checkFSRoot implements spec.md §4.7 step 5: canonicalize target and
// roots, accept iff the target is under some root.
func checkFSRoot(params json.RawMessage, roots []string) error {
	var p struct {
		Path string `json:"path"`
	}
	_ = json.Unmarshal(params, &p)
	target := canonicalize(p.Path)
	for _, root := range roots {
		if strings.HasPrefix(target, canonicalize(root)) {
			return nil
		}
	}
	return errKind(ErrForbiddenFSRoot)
}

func canonicalize(p string) string {
	return strings.TrimSuffix(p, "/")
}

// roundTrip implements spec.md §4.7 steps 6-8: restart-on-exit, write the
// request line, read exactly one response line with a watchdog timeout.
func (h *Host) roundTrip(ctx context.Context, name, line string, timeout time.Duration) (json.RawMessage, error) {
	h.mu.Lock()
	p, ok := h.procs[name]
	if !ok {
		h.mu.Unlock()
		return nil, errKind(ErrNotFound)
	}

	if p.cmd.ProcessState != nil {
		if p.restartCount >= p.maxRestarts {
			h.mu.Unlock()
			return nil, errKind(ErrMaxRestartsExceeded)
		}
		backoff := p.backoff * time.Duration(1<<uint(p.restartCount))
		h.mu.Unlock()
		time.Sleep(backoff)
		h.mu.Lock()

		np, err := h.start(p.spec)
		if err != nil {
			h.mu.Unlock()
			return nil, err
		}
		np.restartCount = p.restartCount + 1
		h.procs[name] = np
		p = np
	}

	stdin := p.stdin
	stdout := p.stdout
	h.mu.Unlock()

	if stdin == nil {
		return nil, errKind(ErrStdinClosed)
	}
	if _, err := io.WriteString(stdin, line+"\n"); err != nil {
		return nil, errKind(ErrStdinClosed)
	}
	if stdout == nil {
		return nil, errKind(ErrStdoutClosed)
	}

	type readResult struct {
		text string
		err  error
	}
	resultCh := make(chan readResult, 1)
	go func() {
		text, err := stdout.ReadString('\n')
		resultCh <- readResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, errKind(ErrTimeout)
	case <-time.After(timeout):
		// The reader goroutine is abandoned; it owns the stdout half
		// until it eventually completes. Next call triggers restart.
		return nil, errKind(ErrTimeout)
	case res := <-resultCh:
		if res.err != nil && res.text == "" {
			return nil, errKind(ErrStdoutClosed)
		}
		trimmed := strings.TrimSpace(res.text)
		if trimmed == "" {
			return json.RawMessage(`{"ok":true}`), nil
		}
		var response struct {
			Error json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal([]byte(trimmed), &response); err != nil {
			return nil, fmt.Errorf("json_parse_error: %w", err)
		}
		if response.Error != nil {
			return nil, fmt.Errorf("rpc_error: %s", string(response.Error))
		}
		return json.RawMessage(trimmed), nil
	}
}

func terminate(p *process) error {
	if p.cmd.Process == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		_ = p.cmd.Wait()
		close(done)
	}()

	_ = p.cmd.Process.Signal(terminateSignal())
	select {
	case <-done:
		return nil
	case <-time.After(5 * time.Second):
		_ = p.cmd.Process.Kill()
		<-done
		return nil
	}
}

// kindError carries a §7 error-kind string verbatim.
type kindError struct{ kind string }

func (e *kindError) Error() string { return e.kind }

func errKind(kind string) error { return &kindError{kind: kind} }

// Kind extracts the short machine-readable error-kind string, if err
// originated from this package.
func Kind(err error) (string, bool) {
	ke, ok := err.(*kindError)
	if !ok {
		return "", false
	}
	return ke.kind, true
}

func terminateSignal() syscall.Signal {
	return syscall.SIGTERM
}

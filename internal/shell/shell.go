// Package shell implements the safe shell executor: the one place in the
// agent allowed to run an arbitrary-looking command string, behind an
// ordered validation pipeline, a wall-clock timeout, and an output cap.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/zeroclaw-io/fleetdiag/pkg/metrics"
)

const (
	// execTimeout bounds how long a single command may run.
	execTimeout = 5 * time.Second
	// maxOutputBytes caps captured stdout+stderr; output beyond this is
	// truncated at the last newline before the cap and marked.
	maxOutputBytes = 8 * 1024
	truncationMarker = "\n... [truncated]"
)

// allowlist is the complete set of programs the executor may run.
var allowlist = map[string]bool{
	"cat": true, "ls": true, "df": true, "free": true, "uname": true,
	"uptime": true, "ps": true, "ip": true, "ifconfig": true,
	"hostname": true, "sensors": true, "lscpu": true, "lsblk": true,
	"head": true, "tail": true, "wc": true, "du": true, "ss": true,
	"date": true, "dmesg": true, "journalctl": true, "systemctl": true,
	"vcgencmd": true, "top": true, "whoami": true, "ping": true,
	"iw": true, "ethtool": true, "gpspipe": true,
}

// blocklist is checked first and rejects a command even if, somehow, its
// program name would otherwise pass the allowlist (defense in depth: the
// allowlist already excludes everything here, but a command is rejected
// on blocklist match before the allowlist is even consulted).
var blocklist = map[string]bool{
	"rm": true, "dd": true, "sudo": true, "su": true, "kill": true,
	"killall": true, "pkill": true, "chmod": true, "chown": true,
	"chgrp": true, "curl": true, "wget": true, "python": true,
	"python3": true, "bash": true, "sh": true, "zsh": true, "perl": true,
	"ruby": true, "node": true, "nc": true, "ncat": true, "socat": true,
	"telnet": true, "ssh": true, "scp": true, "rsync": true,
	"mount": true, "umount": true, "mkfs": true, "fdisk": true,
	"parted": true, "iptables": true, "nft": true, "reboot": true,
	"shutdown": true, "poweroff": true, "halt": true, "init": true,
}

// shellMetacharacters are rejected outright: the executor never invokes a
// shell, so none of these can do anything but confuse a naive parse of
// the command string into thinking it's safe.
const shellMetacharacters = "|&;$<>`\\\n\r"

// sensitivePathSubstrings are rejected if they appear anywhere in a
// command argument, regardless of which allowlisted program would read
// them.
var sensitivePathSubstrings = []string{
	"/etc/shadow", "/etc/sudoers", "/root", "/.ssh", "id_rsa", "id_ed25519",
	".env", "credentials", "secrets",
}

// ValidationError reports why a command was rejected before it ran.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "shell: " + e.Reason }

// Result is the outcome of a successfully executed (i.e. validated and
// run) command.
type Result struct {
	Stdout     string
	ExitCode   int
	Truncated  bool
	DurationMs int64
}

// Executor runs shell commands through the ordered validation pipeline.
type Executor struct{}

// NewExecutor creates a safe shell Executor.
func NewExecutor() *Executor { return &Executor{} }

// Run validates and, if valid, executes command, returning its captured
// output. The ctx deadline, if any, is intersected with the executor's
// own 5s cap — whichever is shorter wins.
func (e *Executor) Run(ctx context.Context, command string) (Result, error) {
	tokens, err := validate(command)
	if err != nil {
		metrics.ShellExecutionsTotal.WithLabelValues("rejected").Inc()
		return Result{}, err
	}

	runCtx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(runCtx, tokens[0], tokens[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()
	elapsed := time.Since(start)

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if runCtx.Err() != nil {
			metrics.ShellExecutionsTotal.WithLabelValues("timeout").Inc()
			return Result{}, fmt.Errorf("shell: command timed out after %s", execTimeout)
		} else if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			metrics.ShellExecutionsTotal.WithLabelValues("error").Inc()
			return Result{}, fmt.Errorf("shell: %w", runErr)
		}
	}

	metrics.ShellExecutionsTotal.WithLabelValues("success").Inc()
	stdout, truncated := truncate(out.Bytes())
	return Result{
		Stdout:     stdout,
		ExitCode:   exitCode,
		Truncated:  truncated,
		DurationMs: elapsed.Milliseconds(),
	}, nil
}

// validate runs the ordered check: empty -> shell metacharacters ->
// tokenize -> blocklist -> allowlist -> per-program argument
// restrictions -> sensitive-path check. Any failing
// step returns a ValidationError naming why, and the command never
// reaches exec.CommandContext.
func validate(command string) ([]string, error) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return nil, &ValidationError{Reason: "empty command"}
	}

	if strings.ContainsAny(trimmed, shellMetacharacters) {
		return nil, &ValidationError{Reason: "command contains a disallowed shell metacharacter"}
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if len(tokens) == 0 {
		return nil, &ValidationError{Reason: "empty command"}
	}

	program := tokens[0]
	if blocklist[program] {
		return nil, &ValidationError{Reason: fmt.Sprintf("program %q is blocklisted", program)}
	}
	if !allowlist[program] {
		return nil, &ValidationError{Reason: fmt.Sprintf("program %q is not allowlisted", program)}
	}

	if err := checkProgramRestrictions(program, tokens[1:]); err != nil {
		return nil, err
	}

	for _, arg := range tokens[1:] {
		for _, substr := range sensitivePathSubstrings {
			if strings.Contains(arg, substr) {
				return nil, &ValidationError{Reason: fmt.Sprintf("argument references a sensitive path: %s", substr)}
			}
		}
	}

	return tokens, nil
}

var systemctlReadOnlyVerbs = map[string]bool{
	"status": true, "is-active": true, "is-enabled": true,
	"list-units": true, "show": true,
}

var iwBlockedSubcommands = map[string]bool{
	"set": true, "connect": true, "disconnect": true, "del": true,
	"add": true, "new": true, "mesh": true,
}

// checkProgramRestrictions applies any per-program argument rule beyond
// the shared allow/blocklist and sensitive-path checks.
func checkProgramRestrictions(program string, args []string) error {
	switch program {
	case "systemctl":
		if len(args) == 0 || !systemctlReadOnlyVerbs[args[0]] {
			return &ValidationError{Reason: "systemctl first argument must be a read-only verb"}
		}
	case "ping":
		for _, a := range args {
			if a == "-f" || a == "--flood" {
				return &ValidationError{Reason: "ping flood mode is not allowed"}
			}
		}
	case "iw":
		for _, a := range args {
			if iwBlockedSubcommands[a] {
				return &ValidationError{Reason: fmt.Sprintf("iw subcommand %q is not allowed", a)}
			}
		}
	case "ethtool":
		for _, a := range args {
			if a == "-s" || a == "--change" || a == "-r" || a == "--reset" || strings.HasPrefix(a, "--set-") {
				return &ValidationError{Reason: fmt.Sprintf("ethtool argument %q is not allowed", a)}
			}
		}
	}
	return nil
}

// tokenize performs quote-aware word splitting equivalent to POSIX shell
// word splitting, without invoking a shell.
func tokenize(s string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inToken := false
	var quote rune

	flush := func() {
		if inToken {
			tokens = append(tokens, current.String())
			current.Reset()
			inToken = false
		}
	}

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			flush()
		default:
			inToken = true
			current.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote in command")
	}
	flush()
	return tokens, nil
}

// truncate caps b at maxOutputBytes, cutting at the last newline before
// the cap so output isn't split mid-line, and reports whether it did.
func truncate(b []byte) (string, bool) {
	if len(b) <= maxOutputBytes {
		return string(b), false
	}
	cut := bytes.LastIndexByte(b[:maxOutputBytes], '\n')
	if cut < 0 {
		cut = maxOutputBytes
	}
	return string(b[:cut]) + truncationMarker, true
}

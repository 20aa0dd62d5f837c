package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_RejectsEmptyCommand(t *testing.T) {
	_, err := validate("   ")
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestValidate_RejectsBlocklistedProgram(t *testing.T) {
	_, err := validate("rm -rf /")
	require.Error(t, err)
	require.Contains(t, err.Error(), "blocklisted")
}

func TestValidate_RejectsNonAllowlistedProgram(t *testing.T) {
	_, err := validate("curlX example.com")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not allowlisted")
}

func TestValidate_RejectsShellMetacharacters(t *testing.T) {
	_, err := validate("cat /etc/hostname; rm -rf /")
	require.Error(t, err)
	require.Contains(t, err.Error(), "metacharacter")
}

func TestValidate_RejectsSensitivePaths(t *testing.T) {
	_, err := validate("cat /etc/shadow")
	require.Error(t, err)
	require.Contains(t, err.Error(), "sensitive path")
}

func TestValidate_RejectsPingFlood(t *testing.T) {
	_, err := validate("ping -f 8.8.8.8")
	require.Error(t, err)
	require.Contains(t, err.Error(), "flood")
}

func TestValidate_AllowsOrdinaryPing(t *testing.T) {
	tokens, err := validate("ping -c 3 8.8.8.8")
	require.NoError(t, err)
	require.Equal(t, []string{"ping", "-c", "3", "8.8.8.8"}, tokens)
}

func TestValidate_RejectsWriteSystemctlVerb(t *testing.T) {
	_, err := validate("systemctl restart sshd")
	require.Error(t, err)
	require.Contains(t, err.Error(), "read-only verb")
}

func TestValidate_AllowsReadOnlySystemctlVerb(t *testing.T) {
	tokens, err := validate("systemctl status sshd")
	require.NoError(t, err)
	require.Equal(t, []string{"systemctl", "status", "sshd"}, tokens)
}

func TestValidate_RejectsIwBlockedSubcommand(t *testing.T) {
	_, err := validate("iw dev wlan0 connect myssid")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not allowed")
}

func TestValidate_RejectsEthtoolChange(t *testing.T) {
	_, err := validate("ethtool -s eth0 speed 1000")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not allowed")
}

func TestTokenize_HandlesQuotedArguments(t *testing.T) {
	tokens, err := tokenize(`echo "hello world" 'second arg'`)
	require.NoError(t, err)
	require.Equal(t, []string{"echo", "hello world", "second arg"}, tokens)
}

func TestTokenize_RejectsUnterminatedQuote(t *testing.T) {
	_, err := tokenize(`cat "unterminated`)
	require.Error(t, err)
}

func TestTruncate_CutsAtLastNewlineUnderCap(t *testing.T) {
	big := make([]byte, 0, maxOutputBytes+100)
	for i := 0; i < maxOutputBytes/10; i++ {
		big = append(big, []byte("0123456789\n")...)
	}
	out, truncated := truncate(big)
	require.True(t, truncated)
	require.Contains(t, out, truncationMarker)
	require.LessOrEqual(t, len(out), maxOutputBytes+len(truncationMarker))
}

func TestTruncate_PassesThroughUnderCap(t *testing.T) {
	out, truncated := truncate([]byte("short output"))
	require.False(t, truncated)
	require.Equal(t, "short output", out)
}

func TestExecutor_RejectsNonAllowlistedEcho(t *testing.T) {
	e := NewExecutor()
	result, err := e.Run(context.Background(), "echo hello")
	// "echo" is intentionally not in the allowlist, so this should be rejected.
	require.Error(t, err)
	require.Zero(t, result)
}

func TestExecutor_RunsWhoami(t *testing.T) {
	e := NewExecutor()
	result, err := e.Run(context.Background(), "whoami")
	require.NoError(t, err)
	require.Equal(t, 0, result.ExitCode)
	require.NotEmpty(t, result.Stdout)
}

func TestToolRunner_ImplementsShellRunnerShape(t *testing.T) {
	runner := NewToolRunner(NewExecutor())
	stdout, exitCode, err := runner.Run(context.Background(), "whoami")
	require.NoError(t, err)
	require.Equal(t, 0, exitCode)
	require.NotEmpty(t, stdout)
}

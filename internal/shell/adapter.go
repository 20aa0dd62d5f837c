package shell

import "context"

// ToolRunner adapts Executor to internal/tools.ShellRunner's narrower
// (stdout, exitCode, error) signature, so the tool registry doesn't need
// to know about shell.Result or shell.ValidationError.
type ToolRunner struct {
	Executor *Executor
}

// NewToolRunner wraps an Executor as a tools.ShellRunner.
func NewToolRunner(e *Executor) ToolRunner {
	return ToolRunner{Executor: e}
}

func (r ToolRunner) Run(ctx context.Context, command string) (string, int, error) {
	result, err := r.Executor.Run(ctx, command)
	if err != nil {
		return "", 0, err
	}
	return result.Stdout, result.ExitCode, nil
}

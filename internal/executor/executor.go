// Package executor provides the external-process collaborator used for
// every build-tool invocation.
package executor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Runner runs external commands. Env entries are merged over the process
// environment; dir, when non-empty, is the working directory.
type Runner interface {
	// Run executes the command, streaming its output.
	Run(name string, args []string, dir string, env map[string]string) error

	// Output executes the command and returns its trimmed standard output.
	Output(name string, args []string, dir string, env map[string]string) (string, error)
}

// Error reports an external command that exited non-zero.
type Error struct {
	Cmd      string
	Args     []string
	ExitCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: exit status %d", e.Cmd, strings.Join(e.Args, " "), e.ExitCode)
}

// ExecRunner is the default Runner, backed by os/exec.
type ExecRunner struct {
	Stdout io.Writer // defaults to os.Stdout
	Stderr io.Writer // defaults to os.Stderr
}

func (r *ExecRunner) Run(name string, args []string, dir string, env map[string]string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if len(env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), env)
	}
	return wrapExit(name, args, cmd.Run())
}

func (r *ExecRunner) Output(name string, args []string, dir string, env map[string]string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if len(env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), env)
	}
	out, err := cmd.Output()
	if err != nil {
		return "", wrapExit(name, args, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// wrapExit converts a non-zero exit into an *Error naming the command, its
// arguments and the exit status. Other failures (e.g. command not found)
// pass through wrapped with the command name.
func wrapExit(name string, args []string, err error) error {
	if err == nil {
		return nil
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return &Error{Cmd: name, Args: args, ExitCode: ee.ExitCode()}
	}
	return fmt.Errorf("%s: %w", name, err)
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}

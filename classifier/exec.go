package classifier

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// ExecOptions represents the options for configuring an Exec runner.
type ExecOptions struct {
	// ExtraArgs are appended verbatim to every invocation.
	ExtraArgs []string

	// Logger receives the classifier's output line by line. Nil disables
	// forwarding.
	Logger *slog.Logger
}

// Exec runs a headless classifier executable (e.g. run_ilastik.sh) via
// os/exec. It implements Runner.
type Exec struct {
	cmd       string
	extraArgs []string
	logger    *slog.Logger
}

// NewExec creates an Exec runner for the given executable path. The path
// must point to an executable file.
func NewExec(cmd string, optFns ...func(o *ExecOptions)) (*Exec, error) {
	opts := ExecOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	info, err := os.Stat(cmd)
	if err != nil {
		return nil, fmt.Errorf("classifier: %s: %w", cmd, err)
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return nil, fmt.Errorf("classifier: %s is not an executable file", cmd)
	}

	return &Exec{
		cmd:       cmd,
		extraArgs: opts.ExtraArgs,
		logger:    opts.Logger,
	}, nil
}

// Train retrains the project's classifier on its current labels.
func (e *Exec) Train(ctx context.Context, project string) error {
	args := []string{
		"--headless",
		"--project=" + project,
		"--retrain",
	}
	return e.run(ctx, args)
}

// Predict runs inference with the project's trained state.
func (e *Exec) Predict(ctx context.Context, project string, opts PredictOptions) error {
	if opts.OutputFormat == "" {
		opts.OutputFormat = "hdf5"
	}
	args := []string{
		"--headless",
		"--project=" + project,
		"--output_format=" + opts.OutputFormat,
	}
	if opts.OutputFilenameFormat != "" {
		args = append(args, "--output_filename_format="+opts.OutputFilenameFormat)
	}
	if opts.PredictFile {
		args = append(args, "--predict_file")
	}
	args = append(args, opts.Inputs...)
	return e.run(ctx, args)
}

func (e *Exec) run(ctx context.Context, args []string) error {
	args = append(args, e.extraArgs...)
	cmd := exec.CommandContext(ctx, e.cmd, args...)

	if e.logger != nil {
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return err
		}
		stderr, err := cmd.StderrPipe()
		if err != nil {
			return err
		}
		go e.forward(ctx, stdout, slog.LevelInfo)
		go e.forward(ctx, stderr, slog.LevelWarn)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("classifier: %s %v: %w", e.cmd, args, err)
	}
	return nil
}

func (e *Exec) forward(ctx context.Context, r io.Reader, level slog.Level) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		e.logger.Log(ctx, level, scanner.Text(), "source", "classifier")
	}
}

var _ Runner = (*Exec)(nil)

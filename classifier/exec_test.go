package classifier

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClassifier writes a shell script that records its arguments.
func fakeClassifier(t *testing.T, exitCode int) (cmd, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}

	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	cmd = filepath.Join(dir, "run_classifier.sh")
	script := "#!/bin/sh\necho \"$@\" > " + argsFile + "\nexit " + strconv.Itoa(exitCode) + "\n"
	require.NoError(t, os.WriteFile(cmd, []byte(script), 0o755))
	return cmd, argsFile
}

func TestNewExecValidation(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := NewExec(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
	})

	t.Run("not executable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plain")
		require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
		_, err := NewExec(path)
		require.Error(t, err)
	})
}

func TestExecTrain(t *testing.T) {
	cmd, argsFile := fakeClassifier(t, 0)
	e, err := NewExec(cmd)
	require.NoError(t, err)

	require.NoError(t, e.Train(context.Background(), "/tmp/proj.ilp"))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "--headless")
	assert.Contains(t, string(args), "--project=/tmp/proj.ilp")
	assert.Contains(t, string(args), "--retrain")
}

func TestExecPredict(t *testing.T) {
	cmd, argsFile := fakeClassifier(t, 0)
	e, err := NewExec(cmd, func(o *ExecOptions) {
		o.ExtraArgs = []string{"--cutout_subregion=[0,0]"}
	})
	require.NoError(t, err)

	err = e.Predict(context.Background(), "/tmp/proj.ilp", PredictOptions{
		OutputFilenameFormat: "/tmp/{nickname}_probs.h5",
		Inputs:               []string{"/tmp/a.h5/data"},
		PredictFile:          true,
	})
	require.NoError(t, err)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "--output_format=hdf5")
	assert.Contains(t, string(args), "--output_filename_format=/tmp/{nickname}_probs.h5")
	assert.Contains(t, string(args), "--predict_file")
	assert.Contains(t, string(args), "/tmp/a.h5/data")
	assert.Contains(t, string(args), "--cutout_subregion=[0,0]")
}

func TestExecFailure(t *testing.T) {
	cmd, _ := fakeClassifier(t, 1)
	e, err := NewExec(cmd)
	require.NoError(t, err)

	err = e.Train(context.Background(), "/tmp/proj.ilp")
	require.Error(t, err)
}

package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs cmd with args and returns what it wrote to stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// clearEnv unsets every SIFT_* key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SIFT_HISTORY_DB", "SIFT_LOG_LEVEL", "SIFT_PROFILE", "SIFT_SAMPLE_ROWS"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func textOpts() *RootOptions {
	return &RootOptions{Format: "text"}
}

func jsonOpts() *RootOptions {
	return &RootOptions{Format: "json"}
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "sift", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	for _, name := range []string{"verbose", "format", "profile", "env-file"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestCommandPresence(t *testing.T) {
	root := NewRootCommand()

	for _, name := range []string{"resolve", "ask", "describe", "lint", "history", "test"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := root.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	clearEnv(t)

	_, _, err := execute(NewRootCommand(), "--format", "xml", "lint", "--spec", "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommand_SetupLoadsProfile(t *testing.T) {
	clearEnv(t)

	opts := &RootOptions{
		Format:      "json",
		EnvFile:     filepath.Join(t.TempDir(), "missing.env"),
		ProfilePath: writeTemp(t, "tuning.cue", "sample_rows: 2\nidentifier: markers: [\"code\"]\n"),
	}
	require.NoError(t, opts.setup(&bytes.Buffer{}))

	assert.Equal(t, 2, opts.sampleRows())
	assert.Equal(t, []string{"code"}, opts.Profile.Identifier.NameMarkers)
	assert.NotNil(t, opts.Logger)
}

func TestRootCommand_SetupRejectsBadProfile(t *testing.T) {
	clearEnv(t)

	opts := &RootOptions{
		Format:      "text",
		EnvFile:     filepath.Join(t.TempDir(), "missing.env"),
		ProfilePath: writeTemp(t, "bad.cue", "sample_rows: -1\n"),
	}
	err := opts.setup(&bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile")
}

func TestRootOptions_Fallbacks(t *testing.T) {
	opts := &RootOptions{}

	assert.NotNil(t, opts.logger())
	assert.Equal(t, "text", string(opts.format()))
	assert.Equal(t, 5, opts.sampleRows())

	opts.Config.SampleRows = 3
	assert.Equal(t, 3, opts.sampleRows())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := WrapExitError(ExitFailure, "outer", errors.New("inner"))
	assert.Equal(t, "outer: inner", wrapped.Error())
	assert.Equal(t, "inner", errors.Unwrap(wrapped).Error())
}

func TestOutputFormatter_TextError(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out, ErrWriter: &errOut, Verbose: true}

	require.NoError(t, f.Error(ErrCodeGeneric, "boom", "detail"))

	assert.Empty(t, out.String())
	assert.Equal(t, "Error [E001]: boom\nDetails: detail\n", errOut.String())
}

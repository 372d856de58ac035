package middleware

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	gerrors "gitlet/internal/errors"
	"gitlet/internal/logging"
	"gitlet/internal/workspace"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(context.Background())
	return cmd
}

func TestChainOrder(t *testing.T) {
	var calls []string
	mark := func(name string) Middleware {
		return func(next RunE) RunE {
			return func(cmd *cobra.Command, args []string) error {
				calls = append(calls, name)
				return next(cmd, args)
			}
		}
	}

	h := Chain(func(*cobra.Command, []string) error {
		calls = append(calls, "handler")
		return nil
	}, mark("first"), mark("second"))

	require.NoError(t, h(newCmd(), nil))
	assert.Equal(t, []string{"first", "second", "handler"}, calls)
}

func TestOperationID(t *testing.T) {
	var seen []string
	h := OperationID(func(cmd *cobra.Command, _ []string) error {
		id, ok := cmd.Context().Value(logging.OperationIDKey).(string)
		require.True(t, ok)
		seen = append(seen, id)
		return nil
	})

	require.NoError(t, h(newCmd(), nil))
	require.NoError(t, h(newCmd(), nil))
	require.Len(t, seen, 2)
	assert.NotEmpty(t, seen[0])
	assert.NotEqual(t, seen[0], seen[1], "each invocation gets its own id")
}

func TestLoggerPassesErrorsThrough(t *testing.T) {
	want := errors.New("boom")
	h := Logger(logging.Nop())(func(*cobra.Command, []string) error { return want })
	assert.Equal(t, want, h(newCmd(), []string{"a"}))

	h = Logger(logging.Nop())(func(*cobra.Command, []string) error { return nil })
	assert.NoError(t, h(newCmd(), nil))
}

func TestRecover(t *testing.T) {
	h := Recover(logging.Nop())(func(*cobra.Command, []string) error {
		panic("kaboom")
	})

	err := h(newCmd(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestRequireRepository(t *testing.T) {
	root := t.TempDir()
	called := false
	next := func(*cobra.Command, []string) error {
		called = true
		return nil
	}

	h := RequireRepository(func() (string, error) { return root, nil })(next)
	err := h(newCmd(), nil)
	assert.True(t, gerrors.IsType(err, gerrors.ErrorTypeRepositoryNotFound))
	assert.False(t, called)

	require.NoError(t, os.Mkdir(filepath.Join(root, workspace.MetaDir), 0755))
	require.NoError(t, h(newCmd(), nil))
	assert.True(t, called)

	h = RequireRepository(func() (string, error) { return "", errors.New("no cwd") })(next)
	err = h(newCmd(), nil)
	assert.True(t, gerrors.IsType(err, gerrors.ErrorTypeRepositoryNotFound))
}

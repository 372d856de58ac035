package middleware

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	gerrors "gitlet/internal/errors"
	"gitlet/internal/logging"
	"gitlet/internal/workspace"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RunE is the signature of a cobra command body.
type RunE func(cmd *cobra.Command, args []string) error

type Middleware func(RunE) RunE

// Chain wraps h so that the first middleware listed runs first.
func Chain(h RunE, middlewares ...Middleware) RunE {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// OperationID tags the command's context with a fresh id so every log line
// of one invocation can be correlated.
func OperationID(next RunE) RunE {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(logging.WithOperationID(ctx, uuid.New().String()))
		return next(cmd, args)
	}
}

func Logger(logger *logging.Logger) Middleware {
	return func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) error {
			start := time.Now()

			err := next(cmd, args)

			fields := []zap.Field{
				zap.String("command", cmd.Name()),
				zap.Strings("args", args),
				zap.Duration("duration", time.Since(start)),
			}
			log := logger.WithOperationID(cmd.Context())
			if err != nil {
				log.Debug("command failed", append(fields,
					zap.String("error_type", string(gerrors.TypeOf(err))),
					zap.Error(err))...)
				return err
			}
			log.Debug("command completed", fields...)
			return nil
		}
	}
}

// Recover turns a panic in the command body into an ordinary error.
func Recover(logger *logging.Logger) Middleware {
	return func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithOperationID(cmd.Context()).Error("panic recovered",
						zap.Any("error", r),
						zap.ByteString("stack", debug.Stack()),
					)
					err = fmt.Errorf("internal error: %v", r)
				}
			}()
			return next(cmd, args)
		}
	}
}

// RequireRepository fails fast when root() has no metadata directory.
func RequireRepository(root func() (string, error)) Middleware {
	return func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) error {
			dir, err := root()
			if err != nil {
				return gerrors.RepositoryNotFound()
			}
			info, err := os.Stat(filepath.Join(dir, workspace.MetaDir))
			if err != nil || !info.IsDir() {
				return gerrors.RepositoryNotFound()
			}
			return next(cmd, args)
		}
	}
}

// cmd/gitlet/main.go
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gitlet/internal/config"
	gerrors "gitlet/internal/errors"
	"gitlet/internal/logging"
	"gitlet/internal/middleware"
	"gitlet/internal/repository"
	"gitlet/internal/workspace"

	"github.com/spf13/cobra"
)

// app holds what every command shares: the target directory and the logger.
type app struct {
	dir    string
	logger *logging.Logger
}

func newApp() *app {
	level := os.Getenv(config.EnvLogLevel)
	if level == "" {
		level = config.Default().LogLevel
	}
	logger, err := logging.NewLogger(level)
	if err != nil {
		logger = logging.Nop()
	}
	return &app{logger: logger}
}

// startDir is --dir, or the working directory when it is unset.
func (a *app) startDir() (string, error) {
	if a.dir != "" {
		return filepath.Abs(a.dir)
	}
	return os.Getwd()
}

// root is the repository enclosing startDir. Outside any repository it is
// startDir itself, so RequireRepository reports the missing repository.
func (a *app) root() (string, error) {
	start, err := a.startDir()
	if err != nil {
		return "", err
	}
	if found, err := workspace.FindRoot(start); err == nil {
		return found, nil
	}
	return start, nil
}

// repoCommand wraps a body that needs an open repository.
func (a *app) repoCommand(body func(cmd *cobra.Command, args []string, repo *repository.Repository) error) middleware.RunE {
	h := func(cmd *cobra.Command, args []string) error {
		root, err := a.root()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		repo, err := repository.Open(root, nil, a.logger.WithOperationID(cmd.Context()))
		if err != nil {
			return err
		}
		defer repo.Close()
		return body(cmd, args, repo)
	}
	return middleware.Chain(h,
		middleware.OperationID,
		middleware.Logger(a.logger),
		middleware.Recover(a.logger),
		middleware.RequireRepository(a.root),
	)
}

// plainCommand wraps a body that runs without a repository.
func (a *app) plainCommand(h middleware.RunE) middleware.RunE {
	return middleware.Chain(h,
		middleware.OperationID,
		middleware.Logger(a.logger),
		middleware.Recover(a.logger),
	)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitlet",
		Short: "Gitlet is a small local version-control system",
		Long: `Gitlet keeps snapshots of the plain files in a directory, with branches,
a staging area and three-way merges. Everything lives in a .gitlet directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&a.dir, "dir", "C", "", "start in this directory and search upward for the repository")

	rootCmd.AddCommand(
		initCmd(a),
		addCmd(a),
		rmCmd(a),
		commitCmd(a),
		logCmd(a),
		globalLogCmd(a),
		findCmd(a),
		statusCmd(a),
		branchCmd(a),
		rmBranchCmd(a),
		checkoutCmd(a),
		resetCmd(a),
		mergeCmd(a),
		verifyCmd(a),
		watchCmd(a),
	)
	return rootCmd
}

// report prints err the way users expect: repository errors as their bare
// message, everything else prefixed.
func report(err error) {
	var ge *gerrors.Error
	if errors.As(err, &ge) {
		fmt.Println(ge.Message)
		return
	}
	fmt.Fprintln(os.Stderr, "error:", err)
}

func main() {
	a := newApp()
	defer a.logger.Sync()

	if err := newRootCmd(a).Execute(); err != nil {
		report(err)
		os.Exit(1)
	}
}

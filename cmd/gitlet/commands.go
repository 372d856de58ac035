package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"gitlet/internal/config"
	gerrors "gitlet/internal/errors"
	"gitlet/internal/repository"
	"gitlet/internal/staging"
	"gitlet/internal/workspace"

	"github.com/spf13/cobra"
)

func initCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new repository in the current directory",
		Args:  cobra.NoArgs,
		RunE: a.plainCommand(func(cmd *cobra.Command, args []string) error {
			root, err := a.startDir()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			cfg, err := config.LoadOrDefault("")
			if err != nil {
				return err
			}
			repo, err := repository.Init(root, cfg, a.logger.WithOperationID(cmd.Context()))
			if err != nil {
				return err
			}
			defer repo.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Initialized empty Gitlet repository in", root)
			return nil
		}),
	}
}

func addCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>",
		Short: "Stage a file for the next commit",
		Args:  cobra.ExactArgs(1),
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			return repo.Add(args[0])
		}),
	}
}

func rmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file>",
		Short: "Unstage a file, or stage its removal",
		Args:  cobra.ExactArgs(1),
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			res, err := repo.Remove(args[0])
			if err != nil {
				return err
			}
			if res == staging.MarkedForRemoval {
				a.logger.WithOperationID(cmd.Context()).Debug("working copy deleted")
			}
			return nil
		}),
	}
}

func commitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "commit <message>",
		Short: "Record the staged changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			msg := ""
			if len(args) == 1 {
				msg = args[0]
			}
			_, err := repo.Commit(msg)
			return err
		}),
	}
}

func logCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the history of the current branch",
		Args:  cobra.NoArgs,
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			commits, err := repo.Log()
			if err != nil {
				return err
			}
			printLog(cmd.OutOrStdout(), commits)
			return nil
		}),
	}
}

func globalLogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "global-log",
		Short: "Show every commit ever made",
		Args:  cobra.NoArgs,
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			commits, err := repo.GlobalLog()
			if err != nil {
				return err
			}
			printLog(cmd.OutOrStdout(), commits)
			return nil
		}),
	}
}

func findCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <message>",
		Short: "Print the ids of commits with the given message",
		Args:  cobra.ExactArgs(1),
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			ids, err := repo.Find(args[0])
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		}),
	}
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show branches, staged files and working changes",
		Args:  cobra.NoArgs,
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			st, err := repo.Status()
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		}),
	}
}

func branchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "branch <name>",
		Short: "Create a branch at the current commit",
		Args:  cobra.ExactArgs(1),
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			return repo.Branch(args[0])
		}),
	}
}

func rmBranchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-branch <name>",
		Short: "Delete a branch pointer",
		Args:  cobra.ExactArgs(1),
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			return repo.RemoveBranch(args[0])
		}),
	}
}

func checkoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch> | -- <file> | <commit> -- <file>",
		Short: "Switch branches or restore a file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			switch dash := cmd.ArgsLenAtDash(); {
			case dash == -1 && len(args) == 1:
				return repo.CheckoutBranch(args[0])
			case dash == 0 && len(args) == 1:
				return repo.CheckoutFile("", args[0])
			case dash == 1 && len(args) == 2:
				return repo.CheckoutFile(args[0], args[1])
			default:
				return gerrors.ValidationError("Incorrect operands.", args)
			}
		}),
	}
}

func resetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <commit>",
		Short: "Check out a commit and move the current branch to it",
		Args:  cobra.ExactArgs(1),
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			return repo.Reset(args[0])
		}),
	}
}

func mergeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			res, err := repo.Merge(args[0])
			if err != nil {
				return err
			}
			printMerge(cmd.OutOrStdout(), res)
			return nil
		}),
	}
}

func verifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check every stored object and branch for corruption",
		Args:  cobra.NoArgs,
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			rep, err := repo.Verify()
			if err != nil {
				return err
			}
			printVerify(cmd.OutOrStdout(), rep)
			if !rep.OK() {
				return fmt.Errorf("repository failed verification")
			}
			return nil
		}),
	}
}

func watchCmd(a *app) *cobra.Command {
	var stage bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report working file changes as they happen",
		Args:  cobra.NoArgs,
		RunE: a.repoCommand(func(cmd *cobra.Command, args []string, repo *repository.Repository) error {
			w, err := workspace.NewWatcher(repo.Root, a.logger.WithOperationID(cmd.Context()))
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Watching", repo.Root, "(Ctrl-C to stop)")
			err = w.Run(ctx, func(c workspace.Change) error {
				staged := false
				if stage {
					var err error
					if staged, err = repo.AutoStage(c); err != nil {
						return err
					}
				}
				printChange(out, c, staged)
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}),
	}
	cmd.Flags().BoolVar(&stage, "stage", false, "re-stage tracked files as they change")
	return cmd
}

package main

import (
	"fmt"
	"io"

	"gitlet/internal/object"
	"gitlet/internal/repository"
	"gitlet/internal/workspace"

	"github.com/fatih/color"
)

const dateLayout = "Mon Jan 2 15:04:05 2006 -0700"

var (
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func printLog(w io.Writer, commits []*object.Commit) {
	for _, c := range commits {
		fmt.Fprintln(w, "===")
		fmt.Fprintln(w, yellow("commit "+c.ID().String()))
		if c.IsMerge() {
			p := c.Parents()
			fmt.Fprintf(w, "Merge: %s %s\n", p[0].Short(), p[1].Short())
		}
		fmt.Fprintf(w, "Date: %s\n", c.Timestamp().Local().Format(dateLayout))
		fmt.Fprintln(w, c.Message())
		fmt.Fprintln(w)
	}
}

func printStatus(w io.Writer, st *repository.Status) {
	fmt.Fprintln(w, bold("=== Branches ==="))
	for _, b := range st.Branches {
		if b == st.Current {
			fmt.Fprintln(w, green("*"+b))
		} else {
			fmt.Fprintln(w, b)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, bold("=== Staged Files ==="))
	for _, name := range st.Staged {
		fmt.Fprintln(w, green(name))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, bold("=== Removed Files ==="))
	for _, name := range st.Removed {
		fmt.Fprintln(w, red(name))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, bold("=== Modifications Not Staged For Commit ==="))
	for _, m := range st.Modified {
		state := "modified"
		if m.Deleted {
			state = "deleted"
		}
		fmt.Fprintln(w, red(fmt.Sprintf("%s (%s)", m.Name, state)))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, bold("=== Untracked Files ==="))
	for _, name := range st.Untracked {
		fmt.Fprintln(w, red(name))
	}
	fmt.Fprintln(w)
}

func printMerge(w io.Writer, res *repository.MergeResult) {
	switch res.Outcome {
	case repository.FastForward:
		fmt.Fprintln(w, "Current branch fast-forwarded.")
	case repository.NothingToMerge:
		fmt.Fprintln(w, "No changes added to the commit.")
	}
	if err := res.Conflict(); err != nil {
		fmt.Fprintln(w, red(err.Error()))
	}
}

func printVerify(w io.Writer, rep *repository.VerifyReport) {
	for _, d := range rep.Corrupt {
		fmt.Fprintln(w, red("corrupt object "+d.String()))
	}
	for _, b := range rep.Dangling {
		fmt.Fprintln(w, red("branch "+b+" points at a missing commit"))
	}
	if rep.OK() {
		fmt.Fprintf(w, "%s %d commits checked\n", green("ok"), rep.Commits)
	}
}

func printChange(w io.Writer, c workspace.Change, staged bool) {
	line := fmt.Sprintf("%s %s", c.Op, c.Name)
	if staged {
		line += " (staged)"
	}
	if c.Op == workspace.Deleted {
		fmt.Fprintln(w, red(line))
		return
	}
	fmt.Fprintln(w, green(line))
}

package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// newLockCmd creates the lock command
func newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Inspect and remove lock markers",
		Long: `Inspect and remove the "<path>.lock" markers used for cautious access.

Markers left behind by a crashed process are never removed automatically;
use "lock release --force" after checking with "lock status".`,
	}

	cmd.AddCommand(newLockStatusCmd())
	cmd.AddCommand(newLockReleaseCmd())

	return cmd
}

// newLockStatusCmd creates the lock status command
func newLockStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <path>",
		Short: "Show whether a path is locked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLockStatus(cmd, args[0])
		},
	}
}

func runLockStatus(cmd *cobra.Command, path string) error {
	container, err := initializeContainer()
	if err != nil {
		return err
	}

	held, info, err := container.GetCoordinator().Inspect(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !held {
		fmt.Fprintf(out, "%s: free\n", path)
		return nil
	}
	if info == nil {
		fmt.Fprintf(out, "%s: locked (marker content unreadable)\n", path)
		return nil
	}

	fmt.Fprintf(out, "%s: locked\n\n", path)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OWNER\tPID\tHOSTNAME\tACQUIRED\tAGE")
	fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
		info.Owner,
		info.PID,
		info.Hostname,
		info.AcquiredAt.Format(time.RFC3339),
		info.Age(time.Now()).Round(time.Second),
	)
	return w.Flush()
}

// LockReleaseOptions holds flags for the lock release command
type LockReleaseOptions struct {
	Force bool
}

// newLockReleaseCmd creates the lock release command
func newLockReleaseCmd() *cobra.Command {
	opts := &LockReleaseOptions{}

	cmd := &cobra.Command{
		Use:   "release <path>",
		Short: "Remove a lock marker regardless of its owner",
		Long: `Remove "<path>.lock" without checking who created it.

A process still holding the lock will report a failed release. Requires --force.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Force {
				return fmt.Errorf("refusing to remove lock marker for %s without --force", args[0])
			}

			container, err := initializeContainer()
			if err != nil {
				return err
			}
			if err := container.GetCoordinator().ReleaseLock(args[0]); err != nil {
				return err
			}

			Warn("lock: marker for %s removed by operator (pid %d)", args[0], os.Getpid())
			fmt.Fprintf(cmd.OutOrStdout(), "%s: released\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "confirm removal of the marker")
	return cmd
}

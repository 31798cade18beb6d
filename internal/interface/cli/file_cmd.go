package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// WriteOptions holds flags for the write command
type WriteOptions struct {
	Data     string
	Encoding string
}

func newWriteCmd() *cobra.Command {
	opts := &WriteOptions{}

	cmd := &cobra.Command{
		Use:   "write <path>...",
		Short: "Write data to files under their locks",
		Long: `Write --data (or stdin when --data is not given) to each path.

Every path is written under its own lock; paths are written concurrently.
A failed lock release is reported even though the data was written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := []byte(opts.Data)
			if !cmd.Flags().Changed("data") {
				in, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				data = in
			}
			return runWrite(cmd, args, data, opts.Encoding)
		},
	}

	cmd.Flags().StringVar(&opts.Data, "data", "", "content to write (default: read stdin)")
	cmd.Flags().StringVar(&opts.Encoding, "encoding", "", "target encoding (default from settings)")
	return cmd
}

func runWrite(cmd *cobra.Command, paths []string, data []byte, encoding string) error {
	enc, err := resolveEncoding(encoding)
	if err != nil {
		return err
	}

	container, err := initializeContainer()
	if err != nil {
		return err
	}
	coordinator := container.GetCoordinator()

	g, ctx := errgroup.WithContext(cmd.Context())
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := coordinator.WriteFile(ctx, path, data, enc); err != nil {
				return err
			}
			GetLogger().Info("wrote %d bytes to %s (%s)", len(data), path, enc)
			return nil
		})
	}
	return g.Wait()
}

// ReadOptions holds flags for the read command
type ReadOptions struct {
	Encoding string
}

func newReadCmd() *cobra.Command {
	opts := &ReadOptions{}

	cmd := &cobra.Command{
		Use:   "read <path>",
		Short: "Read a file under its lock",
		Long: `Read a file under its lock and print it as UTF-8.

If only the lock release fails, the content is still printed and the
release error is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(cmd, args[0], opts.Encoding)
		},
	}

	cmd.Flags().StringVar(&opts.Encoding, "encoding", "", "source encoding (default from settings)")
	return cmd
}

func runRead(cmd *cobra.Command, path, encoding string) error {
	enc, err := resolveEncoding(encoding)
	if err != nil {
		return err
	}

	container, err := initializeContainer()
	if err != nil {
		return err
	}

	data, err := container.GetCoordinator().ReadFile(cmd.Context(), path, enc)
	if data != nil {
		if _, werr := cmd.OutOrStdout().Write(data); werr != nil {
			return fmt.Errorf("failed to write output: %w", werr)
		}
	}
	return err
}

// SizeOptions holds flags for the size command
type SizeOptions struct {
	Fallback int64
}

func newSizeCmd() *cobra.Command {
	opts := &SizeOptions{}

	cmd := &cobra.Command{
		Use:   "size <path>",
		Short: "Print a file's size without locking",
		Long: `Print the size of a file in bytes through the storage service.

The storage service does not lock. Any failure is logged and --fallback
is printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := initializeContainer()
			if err != nil {
				return err
			}
			storage, err := container.GetStorage()
			if err != nil {
				return err
			}

			dir, name := filepath.Split(args[0])
			size := storage.FileSize(dir, name, opts.Fallback)
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatInt(size, 10))
			return nil
		},
	}

	cmd.Flags().Int64Var(&opts.Fallback, "fallback", -1, "value printed when the size cannot be determined")
	return cmd
}

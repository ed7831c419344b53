package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codectx/internal/tools"
)

var filesAbsolute bool

// lsCmd lists vectorised projects
var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List vectorised projects",
	Long: `Lists the projects the retrieval service has an index for, with the
number of files and embedded chunks in each.`,
	Args: cobra.NoArgs,
	RunE: runLs,
}

// vectoriseCmd adds files to the index
var vectoriseCmd = &cobra.Command{
	Use:   "vectorise [paths...]",
	Short: "Add files to the project index",
	Long: `Embeds the given files into the project's vector index, or refreshes
them if they are already indexed. Paths that do not exist are skipped.

Example:
  codectx vectorise internal/server/*.go
  codectx vectorise --project-root ~/src/api docs/design.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVectorise,
}

// filesCmd groups per-file index operations
var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Inspect and edit the indexed file set",
}

var filesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the files in the project index",
	Args:  cobra.NoArgs,
	RunE:  runFilesLs,
}

var filesRmCmd = &cobra.Command{
	Use:   "rm [paths...]",
	Short: "Remove files from the project index",
	Long: `Drops the given files from the vector index. The files themselves are
not touched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFilesRm,
}

func init() {
	filesLsCmd.Flags().BoolVar(&filesAbsolute, "absolute", false, "Print absolute paths")

	filesCmd.AddCommand(filesLsCmd)
	filesCmd.AddCommand(filesRmCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	adapter, cleanup, err := buildAdapter(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	collections, err := adapter.Ls(ctx, tools.LsRequest{ProjectRoot: projectRoot})
	if err != nil {
		return fmt.Errorf("ls failed: %w", err)
	}

	if pipeOutput {
		return printJSON(collections)
	}
	renderCollections(collections)
	return nil
}

func runVectorise(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	adapter, cleanup, err := buildAdapter(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := adapter.Vectorise(ctx, tools.VectoriseRequest{
		Paths:       args,
		ProjectRoot: projectRoot,
	})
	if err != nil {
		return fmt.Errorf("vectorise failed: %w", err)
	}

	if pipeOutput {
		return printJSON(result)
	}
	renderMutation(result)
	return nil
}

func runFilesLs(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	adapter, cleanup, err := buildAdapter(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	paths, err := adapter.FilesLs(ctx, tools.FilesLsRequest{
		ProjectRoot: projectRoot,
		Absolute:    filesAbsolute,
	})
	if err != nil {
		return fmt.Errorf("files ls failed: %w", err)
	}

	if pipeOutput {
		return printJSON(paths)
	}
	renderFileList(paths)
	return nil
}

func runFilesRm(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	adapter, cleanup, err := buildAdapter(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := adapter.FilesRm(ctx, tools.FilesRmRequest{
		Paths:       args,
		ProjectRoot: projectRoot,
	})
	if err != nil {
		return fmt.Errorf("files rm failed: %w", err)
	}

	if pipeOutput {
		return printJSON(result)
	}
	renderMutation(result)
	return nil
}

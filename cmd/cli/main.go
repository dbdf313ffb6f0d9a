// Command brand runs the film roll pipeline from the shell: parsing TSE
// indexes, rendering EXIF-tagged frames out of a directory of scans, and
// packing finished rolls into tar archives.
//
// Every flag can also be set through the environment with the BRAND_ prefix
// (BRAND_JOBS, BRAND_LIMIT, ...).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spoutn1k/brand/internal/archive"
	"github.com/spoutn1k/brand/internal/bridge"
	"github.com/spoutn1k/brand/internal/roll"
	"github.com/spoutn1k/brand/internal/vfs"
)

// IndexFilename is the roll index expected next to the scanned frames.
const IndexFilename = "index.tse"

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "brand",
		Short:        "Tag and pack scanned film rolls",
		SilenceUsage: true,
	}

	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	viper.SetEnvPrefix("brand")
	viper.AutomaticEnv()

	root.AddCommand(parseCommand(), renderCommand(), packCommand())
	return root
}

func logger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// parseCommand reads a TSE index and prints the roll as JSON.
func parseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <index.tse>",
		Short: "Read a TSE index and print the roll as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			data, err := roll.ReadTSE(file)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			if viper.GetBool("spread") {
				data = data.SpreadShots()
			}

			encoded, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}

	cmd.Flags().Bool("spread", false, "offset identical consecutive timestamps by one second")
	_ = viper.BindPFlag("spread", cmd.Flags().Lookup("spread"))
	return cmd
}

// renderCommand runs the processing pool over a directory of scans.
func renderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <dir>",
		Short: "Render EXIF-tagged frames from a directory of scans",
		Long: "Render reads " + IndexFilename + " in the given directory, pairs every " +
			"scan with its exposure metadata, and renders the tagged frames into " +
			"the " + bridge.OutputDir + " subdirectory.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd.Context(), args[0], logger())
		},
	}

	cmd.Flags().Int("jobs", runtime.NumCPU(), "parallel rendering jobs")
	_ = viper.BindPFlag("jobs", cmd.Flags().Lookup("jobs"))
	return cmd
}

// packCommand renders a directory and packs the result into tar archives.
func packCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack <dir>",
		Short: "Render a roll and pack it into tar archives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			if err := render(cmd.Context(), args[0], log); err != nil {
				return err
			}
			return pack(args[0], log)
		},
	}

	cmd.Flags().Int("limit", archive.DefaultSizeLimit, "archive size limit in bytes before splitting")
	cmd.Flags().String("folder", "", "folder name inside the archives (default: the directory name)")
	_ = viper.BindPFlag("limit", cmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("folder", cmd.Flags().Lookup("folder"))
	return cmd
}

func render(ctx context.Context, dir string, log *slog.Logger) error {
	fs := vfs.NewDirFS(dir)

	index, err := fs.Read(IndexFilename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", IndexFilename, err)
	}
	data, err := roll.ReadTSE(strings.NewReader(string(index)))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", IndexFilename, err)
	}

	entries, err := scanEntries(fs)
	if err != nil {
		return err
	}
	if err := roll.Validate(entries); err != nil {
		return err
	}

	tasks := make([]bridge.Message, len(entries))
	for i, entry := range entries {
		merged := data.Generate(entry.Index)
		tasks[i] = bridge.Message{Kind: bridge.KindProcess, Meta: entry, Data: &merged}
	}

	b := bridge.New(func(_ context.Context) (bridge.Module, error) {
		return bridge.NewProcessor(fs), nil
	})
	spawn := func(task bridge.Message, done func(answer any, err error)) error {
		go func() {
			answer, err := b.Handle(ctx, task)
			done(answer, err)
		}()
		return nil
	}

	pool := bridge.NewPool(tasks, viper.GetInt("jobs"), spawn, func(result bridge.Result) {
		if result.Err != nil {
			log.Error("frame failed", "file", result.Task.Meta.Name, "error", result.Err)
			return
		}
		log.Info("frame rendered", "file", result.Task.Meta.Name, "index", result.Task.Meta.Index)
	})
	return pool.Join(ctx)
}

// scanEntries lists the image files at the root of the scan directory and
// derives their frame metadata.
func scanEntries(fs vfs.FS) ([]roll.FileMetadata, error) {
	names, err := fs.List(".")
	if err != nil {
		return nil, err
	}

	var entries []roll.FileMetadata
	for _, name := range names {
		kind := roll.KindOf(name)
		if !kind.IsImage() {
			continue
		}
		entries = append(entries, roll.FileMetadata{
			Name:      name,
			LocalPath: name,
			Index:     roll.IndexFromFilename(name),
			Kind:      kind,
		})
	}
	return entries, nil
}

func pack(dir string, log *slog.Logger) error {
	fs := vfs.NewDirFS(dir)

	index, err := fs.Read(IndexFilename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", IndexFilename, err)
	}
	data, err := roll.ReadTSE(strings.NewReader(string(index)))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", IndexFilename, err)
	}

	folder := viper.GetString("folder")
	if folder == "" {
		folder = filepath.Base(dir)
	}

	sink := func(name string, part []byte) error {
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, part, 0o644); err != nil {
			return err
		}
		log.Info("archive written", "path", target, "bytes", len(part))
		return nil
	}

	return archive.Export(fs, bridge.OutputDir, folder, data, viper.GetInt("limit"), sink)
}

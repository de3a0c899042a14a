package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"vibroFmt/internal/config"
	"vibroFmt/internal/excel"
	"vibroFmt/internal/layout"
	"vibroFmt/internal/logger"
	"vibroFmt/internal/reformat"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	profileName string
	threshold   int

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func main() {
	if err := logger.Init("logs"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	rootCmd := &cobra.Command{
		Use:   "vibrofmt",
		Short: "Reformat vibration measurement workbooks",
		Long: `vibrofmt rearranges exported 1/3-octave vibration velocity workbooks
into the compact three-axis layout, in place.

Files whose sentinel cell (AD4) already holds a value are skipped.
Do not run two batches over the same directory at the same time.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.toml", "Path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Layout profile (overrides format.profile)")

	pruneCmd := &cobra.Command{
		Use:   "prune <input_file> [output_file]",
		Short: "Dissolve merges and drop odd columns from the threshold on",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runPrune,
	}
	pruneCmd.Flags().IntVar(&threshold, "threshold", 0, "First column considered for removal (default: format.prune_threshold)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "scan [dir]",
			Short: "Report which workbooks are already reformatted",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runScan,
		},
		&cobra.Command{
			Use:   "reformat <input_file>",
			Short: "Reformat a single workbook",
			Args:  cobra.ExactArgs(1),
			RunE:  runReformat,
		},
		&cobra.Command{
			Use:   "reformat-all [dir]",
			Short: "Reformat every workbook in a directory",
			Long: `Reformat every .xlsx/.xlsm workbook in a directory.

The directory is taken from the argument, then ` + config.InputDirEnv + `,
then scan.input_directory in the config file.`,
			Args: cobra.MaximumNArgs(1),
			RunE: runReformatAll,
		},
		pruneCmd,
		&cobra.Command{
			Use:   "profiles",
			Short: "List built-in layout profiles",
			Args:  cobra.NoArgs,
			RunE:  runProfiles,
		},
		&cobra.Command{
			Use:   "export-profile <name> <output_file>",
			Short: "Write a built-in profile as JSON for editing",
			Args:  cobra.ExactArgs(2),
			RunE:  runExportProfile,
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}

func loadProfile(cfg *config.Config) (*layout.Profile, error) {
	profile, err := layout.Resolve(profileName, cfg.Format.ProfileFile, cfg.Format.Profile, cfg.Format.PruneThreshold)
	if err != nil {
		return nil, err
	}
	logger.Info("Using profile", "profile", profile.Name, "steps", len(profile.Steps))
	return profile, nil
}

func inputDir(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Scan.InputDirectory
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	profile, err := loadProfile(cfg)
	if err != nil {
		return err
	}
	sentinel, err := excel.ParseCell(profile.SentinelCell)
	if err != nil {
		return err
	}

	dir := inputDir(cfg, args)
	logger.Info("Starting scan operation", "input_directory", dir)
	fmt.Println(titleStyle.Render("Scanning " + dir))

	statuses, err := excel.ScanDirectory(dir, sentinel)
	if err != nil {
		logger.Error("Scan operation failed", "error", err)
		return err
	}

	counts := map[excel.FileState]int{}
	for _, status := range statuses {
		counts[status.State]++
		line := fmt.Sprintf("  %-12s %s", status.State, filepath.Base(status.Path))
		switch status.State {
		case excel.StateProcessed:
			fmt.Println(mutedStyle.Render(line))
		case excel.StateUnreadable:
			fmt.Println(errorStyle.Render(line + ": " + status.Err.Error()))
		default:
			fmt.Println(line)
		}
	}

	reportPath := filepath.Join(cfg.Scan.OutputDirectory, "status_report")
	if err := excel.WriteStatusReport(reportPath, statuses); err != nil {
		logger.Error("Failed to write status report", "error", err)
		return err
	}

	fmt.Printf("\n✓ %d workbooks: %d unprocessed, %d processed, %d unreadable\n",
		len(statuses), counts[excel.StateUnprocessed], counts[excel.StateProcessed], counts[excel.StateUnreadable])
	fmt.Printf("✓ Report saved to '%s'\n", reportPath)
	return nil
}

func runReformat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	profile, err := loadProfile(cfg)
	if err != nil {
		return err
	}

	logger.Info("Starting reformat operation", "input_file", args[0], "profile", profile.Name)

	result, err := reformat.ReformatFile(args[0], profile)
	if err != nil {
		logger.Error("Reformat operation failed", "error", err)
		return err
	}
	printResult(result.Status, result.Path, nil)
	return nil
}

func runReformatAll(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	profile, err := loadProfile(cfg)
	if err != nil {
		return err
	}

	dir := inputDir(cfg, args)
	logger.Info("Starting reformat-all operation", "input_directory", dir, "profile", profile.Name)

	summary, err := reformat.ReformatDirectory(dir, profile, func(e reformat.Event) {
		if e.Status == reformat.StatusStarted {
			fmt.Printf("\n[%d/%d] Processing: %s\n", e.Index, e.Total, filepath.Base(e.File))
			return
		}
		printResult(e.Status, e.File, e.Err)
	})
	if err != nil {
		logger.Error("Reformat-all operation failed", "error", err)
		return err
	}

	if summary.Total == 0 {
		fmt.Printf("No .xlsx files found in directory: %s\n", dir)
		return nil
	}

	fmt.Printf("\n========================================\n")
	fmt.Println(titleStyle.Render("Reformatting complete!"))
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Reformatted: %d files", summary.Reformatted)))
	fmt.Println(mutedStyle.Render(fmt.Sprintf("  Already processed: %d files", summary.AlreadyProcessed)))
	if summary.Failed > 0 {
		fmt.Println(errorStyle.Render(fmt.Sprintf("❌ Errors: %d files", summary.Failed)))
		fmt.Println("Check logs/vibrofmt.log for details")
	}
	return nil
}

func printResult(status reformat.Status, path string, err error) {
	name := filepath.Base(path)
	switch status {
	case reformat.StatusReformatted:
		fmt.Println(successStyle.Render("✓ Reformatted " + name))
	case reformat.StatusAlreadyProcessed:
		fmt.Println(mutedStyle.Render(fmt.Sprintf("File %q is already processed", name)))
	default:
		fmt.Println(errorStyle.Render(fmt.Sprintf("❌ Error reformatting %s: %v", name, err)))
	}
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	input, output := args[0], args[0]
	if len(args) > 1 {
		output = args[1]
	}
	col := threshold
	if col == 0 {
		col = cfg.Format.PruneThreshold
	}

	removed, err := excel.PruneFile(input, output, col)
	if err != nil {
		logger.Error("Prune operation failed", "error", err)
		return err
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Removed %d columns, saved to '%s'", removed, output)))
	return nil
}

func runProfiles(cmd *cobra.Command, args []string) error {
	for _, name := range layout.Names() {
		profile, err := layout.Lookup(name)
		if err != nil {
			return err
		}
		marker := " "
		if name == layout.DefaultProfile {
			marker = "*"
		}
		fmt.Printf("%s %-4s %s (%d steps)\n", marker, name, profile.Description, len(profile.Steps))
	}
	return nil
}

func runExportProfile(cmd *cobra.Command, args []string) error {
	profile, err := layout.Lookup(args[0])
	if errors.Is(err, layout.ErrUnknownProfile) {
		return fmt.Errorf("cannot export: %w", err)
	}
	if err != nil {
		return err
	}

	if err := profile.SaveToFile(args[1]); err != nil {
		logger.Error("Failed to export profile", "profile", args[0], "error", err)
		return err
	}
	fmt.Printf("✓ Profile %s written to '%s'\n", profile.Name, args[1])
	fmt.Printf("  Set format.profile_file to use an edited copy\n")
	return nil
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/karukan/engine/config"
	"github.com/karukan/engine/dict"
	"github.com/karukan/engine/engine"
	"github.com/karukan/engine/format"
)

// newEngine loads configuration and an optional dictionary per the
// --config/--dict flags and returns a ready Engine.
func newEngine(cmd *cobra.Command) (*engine.Engine, error) {
	configPath, _ := cmd.Flags().GetString("config")
	dictPath, _ := cmd.Flags().GetString("dict")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	e := engine.New(cfg)

	if dictPath != "" {
		d, err := dict.LoadAuto(dictPath)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		e.SetDictionaries(d, nil)
	}

	return e, nil
}

// printOutput renders one ProcessKey Output the way a terminal host
// would: preedit line, then candidates if shown, then anything newly
// committed.
func printOutput(w io.Writer, out engine.Output) {
	if out.HasPreedit && out.Preedit != "" {
		fmt.Fprintf(w, "preedit: %s (caret %d)\n", out.Preedit, out.Caret)
	}
	if out.HasAux && out.Aux != "" {
		fmt.Fprintf(w, "aux: %s\n", out.Aux)
	}
	if out.HasCandidates && !out.ShouldHideCandidates {
		for i, c := range out.Candidates {
			marker := " "
			if i == out.CandidateCursor {
				marker = ">"
			}
			fmt.Fprintf(w, "%s %d: %s %s\n", marker, i+1, c.Surface, c.Source.Annotation())
		}
	}
	if out.HasCommit && out.Commit != "" {
		fmt.Fprintf(w, "commit: %s\n", out.Commit)
	}
}

func newTypeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "type <romaji>",
		Short: "Feed romaji through the engine and print the composed text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd)
			if err != nil {
				return err
			}

			for _, r := range args[0] {
				out := e.ProcessKey(engine.RuneKey(r))
				printOutput(cmd.OutOrStdout(), out)
			}
			out := e.Deactivate()
			printOutput(cmd.OutOrStdout(), out)

			fmt.Fprintf(cmd.OutOrStdout(), "last process_key: %s\n",
				format.ExactDuration(durationMs(e.LastProcessKeyMs())))
			return nil
		},
	}
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <reading>",
		Short: "Convert a hiragana reading into ranked candidates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd)
			if err != nil {
				return err
			}

			var out engine.Output
			for _, r := range args[0] {
				out = e.ProcessKey(engine.RuneKey(r))
			}
			out = e.ProcessKey(engine.Key{Special: engine.KeySpace})
			printOutput(cmd.OutOrStdout(), out)

			fmt.Fprintf(cmd.OutOrStdout(), "last conversion: %s\n",
				format.ExactDuration(durationMs(e.LastConversionMs())))
			return nil
		},
	}
}

func newServeStdinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve-stdin",
		Short: "Drive one engine instance interactively from stdin, one key per line",
		Long: "Each line is a single key: a literal printable character, or one of the " +
			"names space/return/escape/backspace/delete/tab/left/right/up/down/home/end. " +
			"A blank line commits and resets the session.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd)
			if err != nil {
				return err
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := scanner.Text()
				if line == "" {
					printOutput(cmd.OutOrStdout(), e.Deactivate())
					continue
				}
				key, ok := parseKeyLine(line)
				if !ok {
					fmt.Fprintf(cmd.ErrOrStderr(), "unrecognized key: %q\n", line)
					continue
				}
				printOutput(cmd.OutOrStdout(), e.ProcessKey(key))
			}
			return scanner.Err()
		},
	}
}

func parseKeyLine(line string) (engine.Key, bool) {
	switch strings.ToLower(line) {
	case "space":
		return engine.Key{Special: engine.KeySpace}, true
	case "return", "enter":
		return engine.Key{Special: engine.KeyReturn}, true
	case "escape", "esc":
		return engine.Key{Special: engine.KeyEscape}, true
	case "backspace":
		return engine.Key{Special: engine.KeyBackspace}, true
	case "delete":
		return engine.Key{Special: engine.KeyDelete}, true
	case "tab":
		return engine.Key{Special: engine.KeyTab}, true
	case "left":
		return engine.Key{Special: engine.KeyLeft}, true
	case "right":
		return engine.Key{Special: engine.KeyRight}, true
	case "up":
		return engine.Key{Special: engine.KeyUp}, true
	case "down":
		return engine.Key{Special: engine.KeyDown}, true
	case "home":
		return engine.Key{Special: engine.KeyHome}, true
	case "end":
		return engine.Key{Special: engine.KeyEnd}, true
	}
	runes := []rune(line)
	if len(runes) == 1 {
		return engine.RuneKey(runes[0]), true
	}
	return engine.Key{}, false
}

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <substring>",
		Short: "Search a dictionary's surfaces for a substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dictPath, _ := cmd.Flags().GetString("dict")
			if dictPath == "" {
				return fmt.Errorf("lookup requires --dict")
			}
			d, err := dict.LoadAuto(dictPath)
			if err != nil {
				return err
			}
			matches := d.SearchBySurface(args[0])
			data := make([][]string, len(matches))
			for i, m := range matches {
				data[i] = []string{m.Reading, m.Surface, fmt.Sprintf("%g", m.Score)}
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"READING", "SURFACE", "SCORE"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.AppendBulk(data)
			table.Render()
			return nil
		},
	}
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Dump every (reading, surface, score) entry in a dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dictPath, _ := cmd.Flags().GetString("dict")
			if dictPath == "" {
				return fmt.Errorf("dump requires --dict")
			}
			d, err := dict.LoadAuto(dictPath)
			if err != nil {
				return err
			}
			// SearchBySurface("") matches every surface (strings.Contains
			// against an empty query is always true), giving the same rows
			// DumpAll writes but as structured data tablewriter can render.
			rows := d.SearchBySurface("")
			data := make([][]string, len(rows))
			for i, m := range rows {
				data[i] = []string{m.Reading, m.Surface, fmt.Sprintf("%g", m.Score)}
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"READING", "SURFACE", "SCORE"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.AppendBulk(data)
			table.Render()

			fmt.Fprintf(cmd.ErrOrStderr(), "%d entries\n", len(rows))
			return nil
		},
	}
}

func newLearnedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learned",
		Short: "Dump the learning cache's learned (reading, surface) pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			path, err := config.LearningPath()
			if err != nil {
				return err
			}
			cache, err := config.NewLearningCache(cfg, path)
			if err != nil {
				return err
			}

			rows := cache.All()
			data := make([][]string, len(rows))
			for i, r := range rows {
				data[i] = []string{
					r.Reading,
					r.Surface,
					fmt.Sprintf("%d", r.Frequency),
					format.HumanTime(r.LastAccess, "never"),
				}
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"READING", "SURFACE", "FREQUENCY", "LAST ACCESS"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.AppendBulk(data)
			table.Render()
			return nil
		},
	}
}

func durationMs(ms uint64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// NewCLI builds the karukan debug CLI's command tree.
func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "karukan",
		Short: "Debug driver for the karukan conversion engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
		},
	}

	rootCmd.PersistentFlags().String("config", "", "path to config.toml (empty uses built-in defaults)")
	rootCmd.PersistentFlags().String("dict", "", "path to a system dictionary to attach")

	rootCmd.AddCommand(
		newTypeCmd(),
		newConvertCmd(),
		newServeStdinCmd(),
		newLookupCmd(),
		newDumpCmd(),
		newLearnedCmd(),
	)

	return rootCmd
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "dealmemo",
	Short: "Investment deal summary builder",
	Long: `Investment Deal Summary Builder

Collects the facts about an investment opportunity (deal terms, founders,
financials, structure, risk, milestones and notes) and renders them as a
paginated PDF memo.

Running without a subcommand opens the desktop window, falling back to the
console form when no GUI is available.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runGUI(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "GUI unavailable (%v), falling back to console form\n", err)
			return runForm(cmd, "", "")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file (YAML)")

	rootCmd.AddCommand(generateCmd, validateCmd, serveCmd, uiCmd, formCmd)

	generateCmd.Flags().StringP("input", "i", "", "Deal file (.yaml or .json)")
	generateCmd.Flags().StringP("output", "o", "", "Output directory (default: config export_dir)")
	generateCmd.Flags().Bool("force", false, "Render even when the deal is incomplete")
	generateCmd.Flags().Bool("sample", false, "Use the bundled sample deal")

	validateCmd.Flags().StringP("input", "i", "", "Deal file (.yaml or .json)")
	validateCmd.MarkFlagRequired("input")

	serveCmd.Flags().String("addr", "", "Listen address (default: config server.addr)")
	serveCmd.Flags().Bool("open", false, "Open the UI in the system browser")

	formCmd.Flags().StringP("output", "o", "", "Output directory for the PDF (default: config export_dir)")
	formCmd.Flags().String("save", "", "Also save the entered deal to this file")
	formCmd.Flags().StringP("input", "i", "", "Start from an existing deal file")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render a deal file as a PDF memo",
	Example: `  dealmemo generate -i deal.yaml
  dealmemo generate -i deal.json -o out/ --force
  dealmemo generate --sample`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := LoadConfig(configFile)
		if err != nil {
			return err
		}
		logger := NewLogger(config.Log.Env)

		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		force, _ := cmd.Flags().GetBool("force")
		sample, _ := cmd.Flags().GetBool("sample")

		var deal DealRecord
		switch {
		case sample:
			deal = SampleDeal()
		case input != "":
			if deal, err = LoadDeal(input); err != nil {
				return err
			}
		default:
			return errors.New("either --input or --sample is required")
		}

		derived := Derive(deal)
		if !derived.Valid && !force {
			PrintDerivedSummary(cmd.ErrOrStderr(), derived)
			return errors.New("deal is incomplete; fix the pending items or pass --force")
		}

		if output == "" {
			output = config.Server.ExportDir
		}
		path, err := SaveInvestmentPDF(deal, config.ReportOptions(), output)
		if err != nil {
			return err
		}
		logger.Info().Str("path", path).Str("company", deal.CompanyName).Bool("complete", derived.Valid).Msg("memo written")
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Memo saved to %s\n", path)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a deal file and list what still blocks export",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		deal, err := LoadDeal(input)
		if err != nil {
			return err
		}
		derived := Derive(deal)
		PrintDerivedSummary(cmd.OutOrStdout(), derived)
		if !derived.Valid {
			return fmt.Errorf("%d item(s) pending", len(derived.PendingItems))
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the deal form and memo API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := LoadConfig(configFile)
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		open, _ := cmd.Flags().GetBool("open")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return NewWebServer(config, addr, NewLogger(config.Log.Env)).Start(ctx, open)
	},
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the deal form in a desktop window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEmbeddedUI(configFile)
	},
}

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Fill in a deal on the console and render the memo",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		save, _ := cmd.Flags().GetString("save")
		input, _ := cmd.Flags().GetString("input")

		if input != "" {
			deal, err := LoadDeal(input)
			if err != nil {
				return err
			}
			return runFormFrom(cmd, deal, output, save)
		}
		return runForm(cmd, output, save)
	},
}

// runForm runs the console form on a blank deal
func runForm(cmd *cobra.Command, output, save string) error {
	return runFormFrom(cmd, NewDealRecord(), output, save)
}

// runFormFrom runs the console form, then saves and renders the result
func runFormFrom(cmd *cobra.Command, initial DealRecord, output, save string) error {
	config, err := LoadConfig(configFile)
	if err != nil {
		return err
	}

	rl, err := newTerminalLineReader()
	if err != nil {
		return err
	}
	defer rl.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Investment Deal Summary")
	fmt.Fprintln(out, "Press Enter to keep the value in [brackets], Ctrl-C to quit.")

	deal, err := NewDealFormBuilder(rl, out, initial).Build()
	if save != "" && (err == nil || errors.Is(err, ErrFormAborted)) {
		if saveErr := SaveDeal(deal, save); saveErr != nil {
			return saveErr
		}
		fmt.Fprintf(out, "✓ Deal saved to %s\n", save)
	}
	if err != nil {
		return err
	}

	if !Derive(deal).Valid {
		fmt.Fprintln(out, "Memo not generated until the pending items are resolved.")
		return nil
	}
	if output == "" {
		output = config.Server.ExportDir
	}
	path, err := SaveInvestmentPDF(deal, config.ReportOptions(), output)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Memo saved to %s\n", path)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

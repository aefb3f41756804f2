package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/proposal-relay/pkg/crypto"
	"github.com/ekaya-inc/proposal-relay/pkg/models"
	"github.com/ekaya-inc/proposal-relay/pkg/repositories"
	"github.com/ekaya-inc/proposal-relay/pkg/services"
)

var listFlags struct {
	webhookID  string
	jsonOutput bool
	yamlOutput bool
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Inspect feedback ledgers",
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "Decode and print the feedback ledger of an installation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		codec, err := crypto.NewTokenCodec(cfg.SecretKey)
		if err != nil {
			return err
		}

		stores, err := repositories.Open(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer stores.Close()

		entries, err := services.NewFeedbackLedger(stores.Feedbacks, codec, cfg.Ledger, logger).
			List(cmd.Context(), listFlags.webhookID)
		if err != nil {
			return err
		}

		switch {
		case listFlags.jsonOutput:
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		case listFlags.yamlOutput:
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(entries)
		default:
			return printFeedback(cmd.OutOrStdout(), entries)
		}
	},
}

func init() {
	feedbackListCmd.Flags().StringVar(&listFlags.webhookID, "webhook-id", "", "Trello webhook id (required)")
	feedbackListCmd.Flags().BoolVar(&listFlags.jsonOutput, "json", false, "print full entries as JSON")
	feedbackListCmd.Flags().BoolVar(&listFlags.yamlOutput, "yaml", false, "print full entries as YAML")
	feedbackListCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	_ = feedbackListCmd.MarkFlagRequired("webhook-id")

	feedbackCmd.AddCommand(feedbackListCmd)
}

// printFeedback writes a table without the Trello credentials.
func printFeedback(w io.Writer, entries []models.Feedback) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No feedback recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCARD\tRATING\tMARK\tPROPOSAL")
	for i, fb := range entries {
		rating := "-"
		if fb.Rating != nil {
			rating = strconv.FormatFloat(*fb.Rating, 'f', -1, 64)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, fb.CardID, rating, fb.ResultMark, truncate(fb.CardDesc, 60))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

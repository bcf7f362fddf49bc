package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"complaint_map/internal/auth"
	"complaint_map/internal/config"
	"complaint_map/internal/domain/complaint"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// report flags
	reportAuthor      string
	reportProblem     string
	reportDescription string
	reportDate        string
	reportTime        string
	reportLat         float64
	reportLng         float64
	reportStatus      string

	// list flags
	listAuthor string
	listStatus string
	listDate   string
	listShort  bool

	// set-status flags
	setKeys   []string
	setStatus string
)

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(setStatusCmd)

	reportCmd.Flags().StringVar(&reportAuthor, "author", "", "Who is reporting (required)")
	reportCmd.Flags().StringVar(&reportProblem, "problem", "", "Short problem title (required)")
	reportCmd.Flags().StringVar(&reportDescription, "description", "", "What happened (required)")
	reportCmd.Flags().StringVar(&reportDate, "date", "", "Incident date YYYY-MM-DD (default today)")
	reportCmd.Flags().StringVar(&reportTime, "time", "", "Incident time HH:MM (default now)")
	reportCmd.Flags().Float64Var(&reportLat, "lat", 0, "Latitude (required)")
	reportCmd.Flags().Float64Var(&reportLng, "lng", 0, "Longitude (required)")
	reportCmd.Flags().StringVar(&reportStatus, "status", string(complaint.StatusPending), "Initial status")
	_ = reportCmd.MarkFlagRequired("author")
	_ = reportCmd.MarkFlagRequired("problem")
	_ = reportCmd.MarkFlagRequired("description")
	_ = reportCmd.MarkFlagRequired("lat")
	_ = reportCmd.MarkFlagRequired("lng")

	listCmd.Flags().StringVar(&listAuthor, "author", "", "Only complaints by this author")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only complaints with this status")
	listCmd.Flags().StringVar(&listDate, "date", "", "Only complaints on this date (YYYY-MM-DD)")
	listCmd.Flags().BoolVar(&listShort, "short", false, "Show locations rounded to three decimals")

	setStatusCmd.Flags().StringArrayVar(&setKeys, "key", nil, `Complaint key "problem|date|time" (repeatable, required)`)
	setStatusCmd.Flags().StringVar(&setStatus, "status", "", "New status: Pending, In Progress, Resolved or Closed (required)")
	_ = setStatusCmd.MarkFlagRequired("key")
	_ = setStatusCmd.MarkFlagRequired("status")
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Obtain and cache a credential for the spreadsheet",
	Long: `Obtain a credential for the spreadsheet. With an OAuth client file this
opens the consent flow when no cached token is usable and writes the token
to GOOGLE_TOKEN_FILE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), config.CredentialTimeout)
		defer cancel()

		provider := auth.NewProvider(cfg.CredentialsFile, cfg.TokenFile)
		tok, err := provider.GetCredential(ctx)
		if err != nil {
			return err
		}

		if tok.Expiry.IsZero() {
			fmt.Fprintln(cmd.OutOrStdout(), "Credential ready")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Credential ready, expires %s\n", tok.Expiry.Format(time.RFC3339))
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the complaint tab and header row if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openComplaintStore(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := config.WithWriteTimeout(cmd.Context())
		defer cancel()

		if err := store.EnsureComplaintSheet(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sheet %q is ready\n", cfg.SheetName)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Record a new complaint",
	Long: `Record a new complaint.

Examples:
  complaint_map report --author Kim --problem Leak \
    --description "Water on the stairs" --lat 37.563256 --lng 126.937537

  complaint_map report --author Lee --problem Noise --description Drilling \
    --date 2025-06-01 --time 22:30 --lat 37.56 --lng 126.93`,
	RunE: func(cmd *cobra.Command, args []string) error {
		when, err := complaint.IncidentTime(reportDate, reportTime, time.Now())
		if err != nil {
			return err
		}

		c := complaint.New(reportAuthor, reportProblem, reportDescription, when, complaint.NewLocation(reportLat, reportLng))
		if c.Status, err = complaint.ParseStatus(reportStatus); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}

		store, err := openComplaintStore(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := config.WithWriteTimeout(cmd.Context())
		defer cancel()

		if err := store.Insert(ctx, c); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s\nKey: %s\n", c, c.Key())
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List complaints, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := complaint.Filter{Author: listAuthor, Date: listDate}
		if listStatus != "" {
			status, err := complaint.ParseStatus(listStatus)
			if err != nil {
				return err
			}
			filter.Status = status
		}

		store, err := openComplaintStore(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := config.WithReadTimeout(cmd.Context())
		defer cancel()

		all, err := store.ScanAll(ctx)
		if err != nil {
			return err
		}

		matched := complaint.FilterComplaints(all, filter)
		printComplaints(cmd, matched, listShort)

		log.Debug().
			Int("scanned", len(all)).
			Int("listed", len(matched)).
			Msg("Listed complaints")
		return nil
	},
}

var setStatusCmd = &cobra.Command{
	Use:   "set-status",
	Short: "Set the status of complaints by key",
	Long: `Set the status of every complaint matching one of the given keys.

A key is "problem|date|time" as printed by report and list. Complaints that
share all three fields share a key and are updated together.

Examples:
  complaint_map set-status --key "Leak|2025-06-01|09:00:00" --status Resolved`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := complaint.ParseStatus(setStatus)
		if err != nil {
			return err
		}

		keys := make([]complaint.RecordKey, 0, len(setKeys))
		for _, raw := range setKeys {
			key, err := complaint.ParseRecordKey(raw)
			if err != nil {
				return err
			}
			keys = append(keys, key)
		}

		store, err := openComplaintStore(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := config.WithWriteTimeout(cmd.Context())
		defer cancel()

		updated, err := store.UpdateStatusBatch(ctx, keys, status)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d complaint(s) to %s\n", updated, status)
		return nil
	},
}

func printComplaints(cmd *cobra.Command, complaints []complaint.Complaint, short bool) {
	if len(complaints) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No complaints found.")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTIME\tAUTHOR\tPROBLEM\tLOCATION\tSTATUS")
	for _, c := range complaints {
		location := c.Location.String()
		if short {
			location = c.Location.Short()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", c.Date, c.Time, c.Author, c.Problem, location, c.Status)
	}
	_ = w.Flush()

	fmt.Fprintf(cmd.ErrOrStderr(), "%d complaint(s)\n", len(complaints))
}

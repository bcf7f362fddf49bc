package main

import (
	"context"
	"os"

	"complaint_map/internal/app"
	"complaint_map/internal/auth"
	"complaint_map/internal/sheets"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var cfg *app.Config

var rootCmd = &cobra.Command{
	Use:   "complaint_map",
	Short: "Report and triage location-tagged complaints stored in a Google spreadsheet",
	Long: `complaint_map records community complaints in a Google spreadsheet and
lets you list them, change their status, or serve them over HTTP.

Configuration comes from the environment (or a .env file):
  SPREADSHEET_ID              spreadsheet holding the complaint tab (required)
  SHEET_NAME                  tab name (default Sheet1)
  GOOGLE_CREDENTIALS_FILE     OAuth client or service account key (default credentials.json)
  GOOGLE_TOKEN_FILE           cached user token (default token.json)
  SHEETS_REQUESTS_PER_MINUTE  request pacing (default 60)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		app.SetupEnvironment()

		loaded, err := app.LoadConfig()
		if err != nil {
			log.Error().Err(err).Msg("Failed to load configuration")
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(initCmd)
}

// openComplaintStore opens the store used by the one-shot commands.
var openComplaintStore = func(ctx context.Context) (*sheets.ComplaintStore, error) {
	store, _, err := openStore(ctx, nil)
	return store, err
}

// openStore builds the store stack: credential provider, paced client, store.
func openStore(ctx context.Context, metrics *sheets.Metrics) (*sheets.ComplaintStore, *auth.Provider, error) {
	provider := auth.NewProvider(cfg.CredentialsFile, cfg.TokenFile)

	client, err := sheets.NewClient(ctx, provider, cfg.RateConfig().NewLimiter())
	if err != nil {
		return nil, nil, err
	}

	log.Debug().
		Str("spreadsheet_id", cfg.SpreadsheetID).
		Str("sheet_name", cfg.SheetName).
		Int("requests_per_minute", cfg.RequestsPerMinute).
		Msg("Opened complaint store")

	return sheets.NewComplaintStore(client, cfg.SpreadsheetID, cfg.SheetName, metrics), provider, nil
}

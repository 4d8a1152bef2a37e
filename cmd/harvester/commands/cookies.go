package commands

import (
	"github.com/spf13/cobra"

	"review-harvester/internal/browser"
	"review-harvester/internal/logging"
	"review-harvester/pkg/utils"
)

var cookiesOut *string

func init() {
	cookiesOut = cookiesExportCmd.Flags().String("out", "", "Cookie file to write. Defaults to the configured cookie path.")
	cookiesCmd.AddCommand(cookiesExportCmd)
	rootCmd.AddCommand(cookiesCmd)
}

var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Manages the stored marketplace session.",
}

var cookiesExportCmd = &cobra.Command{
	Use:   "export [--out <cookies.json>]",
	Short: "Opens a visible browser for a manual login and saves its cookies.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loaded
		path := utils.GetStringOrDefault(*cookiesOut, cfg.Scraper.CookiePath)

		n, err := browser.NewLauncher(cfg).ExportCookies(cmd.Context(), path)
		if err != nil {
			return err
		}

		logging.ForComponent("cli").Info("Cookies exported", map[string]interface{}{
			"file":  path,
			"count": n,
		})
		return nil
	},
}

package cmd

import (
	"pagewidth/config"
	"pagewidth/core"
	"pagewidth/models"

	"github.com/spf13/cobra"
)

var (
	resolveViewport    int
	resolveContentType string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Prints the effective settings and decision for a page URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := core.ParsePageURL(args[0])
		if err != nil {
			return err
		}
		if !core.IsTextContent(resolveContentType) {
			return printJSON(models.EvaluateResponse{Skipped: true})
		}
		viewport := resolveViewport
		if viewport <= 0 {
			viewport = config.AppConfig.Page.DefaultViewportWidth
		}
		eff, d, err := engine.Evaluate(cmd.Context(), u, viewport)
		if err != nil {
			return err
		}
		return printJSON(models.EvaluateResponse{Effective: &eff, Decision: &d})
	},
}

func init() {
	resolveCmd.Flags().IntVar(&resolveViewport, "viewport", 0, "viewport width in px (default page.default_viewport_width)")
	resolveCmd.Flags().StringVar(&resolveContentType, "content-type", "text/html", "document content type")
	rootCmd.AddCommand(resolveCmd)
}

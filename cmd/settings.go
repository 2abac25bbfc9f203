package cmd

import (
	"encoding/json"
	"fmt"
	"pagewidth/core"
	"pagewidth/models"

	"github.com/spf13/cobra"
)

var (
	globalActivated bool
	globalWidth     int
	globalMethod    string

	siteWidth     int
	siteMethod    string
	siteDisabled  bool
	sitePattern   string
	sitePathLevel int
)

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Reads and writes global and per-site width settings",
}

var settingsGlobalCmd = &cobra.Command{
	Use:   "global",
	Short: "Global settings",
}

var settingsGlobalGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Prints the global settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		gs, err := engine.LoadGlobal(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(gs)
	},
}

var settingsGlobalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Updates the global settings; unset flags keep their stored values",
	RunE: func(cmd *cobra.Command, args []string) error {
		gs, err := engine.LoadGlobal(cmd.Context())
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("activated") {
			gs.Activated = globalActivated
		}
		if cmd.Flags().Changed("width") {
			gs.Width = globalWidth
		}
		if cmd.Flags().Changed("method") {
			gs.Method = models.Method(globalMethod)
		}
		if err := core.SaveGlobal(cmd.Context(), engine.Store(), gs); err != nil {
			return err
		}
		saved, err := engine.LoadGlobal(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(saved)
	},
}

var settingsSiteCmd = &cobra.Command{
	Use:   "site",
	Short: "Per-site overrides",
}

var settingsSiteGetCmd = &cobra.Command{
	Use:   "get <url>",
	Short: "Prints the settings form for a page URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := core.ParsePageURL(args[0])
		if err != nil {
			return err
		}
		form, err := core.LoadForm(cmd.Context(), engine.Store(), u)
		if err != nil {
			return err
		}
		return printJSON(form)
	},
}

var settingsSiteSetCmd = &cobra.Command{
	Use:   "set <url>",
	Short: "Saves a site override for a page URL, as the settings form would",
	Long: `Saves the settings form for a page URL. Values start from the form as it
is currently loaded for the URL; flags replace individual fields. An override
is only stored when the site is disabled or differs from the global settings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := core.ParsePageURL(args[0])
		if err != nil {
			return err
		}
		global, err := engine.LoadGlobal(cmd.Context())
		if err != nil {
			return err
		}
		form, err := core.LoadForm(cmd.Context(), engine.Store(), u)
		if err != nil {
			return err
		}

		site := models.SiteChoice{
			Width:     form.Width,
			Method:    form.Method,
			Disabled:  form.Disabled,
			Pattern:   form.Pattern,
			PathLevel: form.PathLevel,
		}
		if cmd.Flags().Changed("width") {
			site.Width = siteWidth
		}
		if cmd.Flags().Changed("method") {
			site.Method = models.Method(siteMethod)
		}
		if cmd.Flags().Changed("disabled") {
			site.Disabled = siteDisabled
		}
		if cmd.Flags().Changed("pattern") {
			site.Pattern = models.Pattern(sitePattern)
		}
		if cmd.Flags().Changed("path-level") {
			site.PathLevel = sitePathLevel
		}

		result, err := core.SaveForm(cmd.Context(), engine.Store(), u, models.SaveRequest{Global: global, Site: site})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var settingsSiteClearCmd = &cobra.Command{
	Use:   "clear <url>",
	Short: "Removes every override that applies to a page URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := core.ParsePageURL(args[0])
		if err != nil {
			return err
		}
		removed, err := core.ClearSite(cmd.Context(), engine.Store(), u)
		if err != nil {
			return err
		}
		return printJSON(models.SaveResult{RemovedKeys: removed})
	},
}

func init() {
	settingsGlobalSetCmd.Flags().BoolVar(&globalActivated, "activated", true, "turn width constraints on or off")
	settingsGlobalSetCmd.Flags().IntVar(&globalWidth, "width", models.DefaultWidth, "target width in px")
	settingsGlobalSetCmd.Flags().StringVar(&globalMethod, "method", string(models.MethodAutomatic), "automatic, absolute, relative or margin")

	settingsSiteSetCmd.Flags().IntVar(&siteWidth, "width", models.DefaultWidth, "target width in px for this site")
	settingsSiteSetCmd.Flags().StringVar(&siteMethod, "method", string(models.MethodAutomatic), "automatic, absolute, relative or margin")
	settingsSiteSetCmd.Flags().BoolVar(&siteDisabled, "disabled", false, "never constrain this site")
	settingsSiteSetCmd.Flags().StringVar(&sitePattern, "pattern", string(models.PatternPath), "scope of the override: exact, path or domain")
	settingsSiteSetCmd.Flags().IntVar(&sitePathLevel, "path-level", 1, "path segments kept for the path scope (1 or 2)")

	settingsGlobalCmd.AddCommand(settingsGlobalGetCmd, settingsGlobalSetCmd)
	settingsSiteCmd.AddCommand(settingsSiteGetCmd, settingsSiteSetCmd, settingsSiteClearCmd)
	settingsCmd.AddCommand(settingsGlobalCmd, settingsSiteCmd)
	rootCmd.AddCommand(settingsCmd)
}

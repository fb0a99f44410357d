package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yi-nology/easy_fm/biz/catalog"
	"github.com/yi-nology/easy_fm/pkg/config"
	"github.com/yi-nology/easy_fm/pkg/errs"
)

func (a *App) newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the catalog and write a default config file if none exists",
		Long: `Create the catalog tables at the configured location. Running it again on an
existing catalog changes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.configPath); os.IsNotExist(err) {
				if err := config.Save(a.configPath, a.cfg); err != nil {
					return errs.Config(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote config %s\n", a.configPath)
			}

			if err := catalog.Init(a.cfg.Catalog.Kind, a.cfg.Catalog.Location); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog ready: %s %s\n", a.cfg.Catalog.Kind, a.cfg.Catalog.Location)
			return nil
		},
	}
}

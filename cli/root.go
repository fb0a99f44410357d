// Package cli implements the easyfm command line.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/spf13/cobra"
	"github.com/yi-nology/easy_fm/biz/catalog"
	"github.com/yi-nology/easy_fm/biz/service/rm"
	"github.com/yi-nology/easy_fm/pkg/config"
	"github.com/yi-nology/easy_fm/pkg/errs"
)

// App carries the state shared by every command of one invocation.
type App struct {
	configPath string
	debug      bool

	cfg *config.Config
}

// NewRootCommand builds the easyfm command tree.
func NewRootCommand() *cobra.Command {
	a := &App{}
	root := &cobra.Command{
		Use:   "easyfm",
		Short: "Store files in registered datastores and keep track of them",
		Long: `easyfm uploads files to registered datastores (S3-compatible buckets or local
directories) and records every stored file in a catalog, so it can later be
found, downloaded or deleted by gid, datastore and name.

Usage examples:

1. Create the catalog:

	easyfm init

2. Register a bucket and upload a file named after its gid:

	easyfm datastore put s3 us-east-1 https://s3.example.com AK SK my-bucket
	easyfm upload -r gide 1 ./report.pdf

3. Fetch it back:

	easyfm download -d 1 -n report.pdf -p /tmp/report.pdf
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "",
		"Path to the config file (default <user config dir>/rm/config.yaml)")
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		a.newInitCommand(),
		a.newDatastoreCommand(),
		a.newUploadCommand(),
		a.newDownloadCommand(),
		a.newDeleteCommand(),
		a.newListCommand(),
		a.newServeCommand(),
		newVersionCommand(),
	)
	return root
}

func (a *App) loadConfig() error {
	if a.configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return errs.Config(err)
		}
		a.configPath = path
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return errs.Config(err)
	}
	a.cfg = cfg

	level := cfg.Log.HertzLevel()
	if a.debug {
		level = hlog.LevelDebug
	}
	hlog.SetLevel(level)
	return nil
}

// manager opens the configured catalog. The caller closes the manager.
func (a *App) manager(opts ...rm.Option) (*rm.Manager, error) {
	kind, location := a.cfg.Catalog.Kind, a.cfg.Catalog.Location
	if isFileCatalog(kind) {
		if _, err := os.Stat(location); os.IsNotExist(err) {
			return nil, errs.Config(fmt.Errorf("catalog %s does not exist, run `easyfm init` first", location))
		}
	}
	cat, err := catalog.Open(kind, location)
	if err != nil {
		return nil, err
	}
	return rm.New(cat, opts...), nil
}

func isFileCatalog(kind string) bool {
	switch strings.ToLower(kind) {
	case "sqlite", "sqlite3", "local":
		return true
	}
	return false
}

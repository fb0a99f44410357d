package cli

import (
	"encoding/json"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/spf13/cobra"
	"github.com/yi-nology/easy_fm/biz/handler"
	"github.com/yi-nology/easy_fm/biz/handler/version"
	"github.com/yi-nology/easy_fm/biz/middleware"
	"github.com/yi-nology/easy_fm/biz/router"
	"github.com/yi-nology/easy_fm/biz/service/rm"
	"github.com/yi-nology/easy_fm/pkg/lock"
	"github.com/yi-nology/easy_fm/pkg/metrics"
	"github.com/yi-nology/easy_fm/pkg/redis"
	"github.com/yi-nology/easy_fm/pkg/validator"
)

// multipartOverhead leaves room for the form fields around an upload.
const multipartOverhead = 1 << 20

func (a *App) newServeCommand() *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the file manager over HTTP",
		Long: `Serve datastore and file operations over HTTP. With redis enabled in the config,
uploads and deletions are serialized per datastore, and datastore changes
globally, across every server sharing the catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address == "" {
				address = a.cfg.Server.Address
			}

			collector, err := metrics.NewCollector()
			if err != nil {
				return err
			}
			opts := []rm.Option{rm.WithMetrics(collector)}

			client, err := redis.NewClient(cmd.Context(), a.cfg.Redis)
			if err != nil {
				return fmt.Errorf("connect redis: %w", err)
			}
			if client != nil {
				defer client.Close()
				locker := lock.New(client, lock.DefaultPrefix, 0, 0)
				middleware.InitWriteLock(locker)
				opts = append(opts, rm.WithLocker(locker))
				hlog.Infof("write locks enabled on redis %s", a.cfg.Redis.Address)
			}

			mgr, err := a.manager(opts...)
			if err != nil {
				return err
			}
			defer mgr.Close()

			h := server.New(
				server.WithHostPorts(address),
				server.WithMaxRequestBodySize(int(a.cfg.Server.MaxUploadSize)+multipartOverhead),
			)
			h.Use(middleware.Recovery(), middleware.Logging(), middleware.CORS(a.cfg.Server.AllowOrigin))
			upload := validator.NewUploadConfig(a.cfg.Server.MaxUploadSize, a.cfg.Server.AllowedTypes)
			router.Register(h.Engine, handler.NewFileHandler(mgr, upload))
			router.RegisterMetrics(h.Engine, collector)

			hlog.Infof("easyfm %s serving catalog %s on %s", version.AppVersion, a.cfg.Catalog.Kind, address)
			h.Spin()
			return nil
		},
	}
	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (default from config)")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(version.Current(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

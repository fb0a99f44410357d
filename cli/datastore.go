package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/yi-nology/easy_fm/pkg/storage"
	"github.com/yi-nology/easy_fm/pkg/storage/local"
	"github.com/yi-nology/easy_fm/pkg/storage/s3"
)

type s3Options struct {
	PathStyle bool
	URLMode   string
}

func (a *App) newDatastoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datastore",
		Aliases: []string{"ds"},
		Short:   "Manage registered datastores",
	}

	put := &cobra.Command{
		Use:     "put",
		Aliases: []string{"p"},
		Short:   "Register a datastore",
	}

	var s3Opts s3Options
	putS3 := &cobra.Command{
		Use:   "s3 <region> <endpoint> <access_key> <secret_key> <bucket>",
		Short: "Register an S3-compatible bucket",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.putDatastore(cmd, storage.KindS3, s3.Config{
				Region:    args[0],
				Endpoint:  args[1],
				AccessKey: args[2],
				SecretKey: args[3],
				Bucket:    args[4],
				PathStyle: s3Opts.PathStyle,
				URLMode:   s3Opts.URLMode,
			})
		},
	}
	putS3.Flags().BoolVar(&s3Opts.PathStyle, "path-style", false, "Use path-style addressing (MinIO)")
	putS3.Flags().StringVar(&s3Opts.URLMode, "url-mode", s3.URLModeLink,
		"Descriptor of stored objects: link or presigned")

	putLocal := &cobra.Command{
		Use:   "local <base_path>",
		Short: "Register a directory on this machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.putDatastore(cmd, storage.KindLocal, local.Config{BasePath: args[0]})
		},
	}
	put.AddCommand(putS3, putLocal)

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List registered datastores",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			records, err := mgr.ListDatastores(cmd.Context())
			if err != nil {
				return err
			}
			printDatastores(cmd.OutOrStdout(), records)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a datastore registration; its files stay in the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDSID(args[0])
			if err != nil {
				return err
			}
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := mgr.RemoveDatastore(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed datastore %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(put, ls, remove)
	return cmd
}

// putDatastore validates cfg by building a backend from it, then registers it.
func (a *App) putDatastore(cmd *cobra.Command, kind string, cfg any) error {
	payload, err := storage.EncodeConfig(cfg)
	if err != nil {
		return err
	}
	if _, err := storage.New(kind, payload); err != nil {
		return err
	}

	mgr, err := a.manager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	id, err := mgr.RegisterDatastore(cmd.Context(), kind, payload)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "registered %s datastore %d\n", kind, id)
	return nil
}

func parseDSID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid datastore id %q", raw)
	}
	return uint(id), nil
}

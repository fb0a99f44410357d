package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yi-nology/easy_fm/biz/catalog"
	"github.com/yi-nology/easy_fm/pkg/naming"
)

func (a *App) newUploadCommand() *cobra.Command {
	var policy string
	cmd := &cobra.Command{
		Use:     "upload <dsid> <path>",
		Aliases: []string{"u"},
		Short:   "Upload a file to a datastore",
		Long: `Upload the file at <path> to datastore <dsid>. The --rename policy decides the
key the backend stores it under:

	raw   the file name itself
	gid   the generated gid
	gide  the generated gid followed by the file extension
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dsid, err := parseDSID(args[0])
			if err != nil {
				return err
			}
			p, err := naming.ParsePolicy(policy)
			if err != nil {
				return err
			}
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			record, err := mgr.Upload(cmd.Context(), dsid, args[1], p)
			if err != nil {
				return err
			}
			printFiles(cmd.OutOrStdout(), []catalog.FileRecord{*record})
			return nil
		},
	}
	cmd.Flags().StringVarP(&policy, "rename", "r", string(naming.Default), "Naming policy: raw, gid or gide")
	return cmd
}

type downloadOptions struct {
	GID  string
	DSID uint
	Name string
	Path string
}

func (a *App) newDownloadCommand() *cobra.Command {
	var opts downloadOptions
	cmd := &cobra.Command{
		Use:     "download",
		Aliases: []string{"d"},
		Short:   "Download the one file matching the given filters",
		Long: `Download the file matching every given filter. When several files match,
nothing is downloaded and the candidates are listed instead. Without --path the
file is written to its original name in the current directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := catalog.Filter{GID: opts.GID, DSID: opts.DSID, Name: opts.Name}
			if filter.IsZero() {
				return errors.New("at least one of --gid, --dsid or --name is required")
			}
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			record, err := mgr.Download(cmd.Context(), filter, opts.Path)
			if err != nil {
				return err
			}
			dst := opts.Path
			if dst == "" {
				dst = record.Name
			}
			fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s (gid %s) to %s\n", record.Name, record.GID, dst)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.GID, "gid", "g", "", "File gid")
	flags.UintVarP(&opts.DSID, "dsid", "d", 0, "Datastore id")
	flags.StringVarP(&opts.Name, "name", "n", "", "Original file name")
	flags.StringVarP(&opts.Path, "path", "p", "", "Destination path")
	return cmd
}

func (a *App) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <gid>",
		Aliases: []string{"del"},
		Short:   "Delete a file from its datastore and the catalog",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			record, err := mgr.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (gid %s) from datastore %d\n", record.Name, record.GID, record.DSID)
			return nil
		},
	}
}

func (a *App) newListCommand() *cobra.Command {
	var dsid uint
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored files",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			records, err := mgr.List(cmd.Context(), dsid)
			if err != nil {
				return err
			}
			printFiles(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().UintVarP(&dsid, "id", "i", 0, "Only list files of this datastore")
	return cmd
}

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/gosuri/uitable"
	"github.com/yi-nology/easy_fm/biz/catalog"
	"github.com/yi-nology/easy_fm/biz/service/rm"
	"github.com/yi-nology/easy_fm/pkg/errs"
	"github.com/yi-nology/easy_fm/pkg/storage"
)

// Exit codes of the easyfm binary.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitNotFound  = 2
	ExitAmbiguous = 3
)

const maxColWidth = 80

// ExitCode maps an error returned by a command onto the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errs.ErrAmbiguous):
		return ExitAmbiguous
	case errors.Is(err, errs.ErrNotFound):
		return ExitNotFound
	default:
		return ExitFailure
	}
}

// PrintError writes err to w. Ambiguous lookups also list their candidates.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	var ambiguous *rm.AmbiguousError
	if errors.As(err, &ambiguous) {
		fmt.Fprintln(w, "narrow the lookup with --gid; candidates:")
		printFiles(w, ambiguous.Candidates)
	}
}

func printFiles(w io.Writer, records []catalog.FileRecord) {
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.AddRow("GID", "DSID", "NAME", "RAW KEY", "DESCRIPTOR")
	for _, r := range records {
		table.AddRow(r.GID, r.DSID, r.Name, r.RawKey, r.Descriptor)
	}
	fmt.Fprintln(w, table)
}

func printDatastores(w io.Writer, records []catalog.DatastoreRecord) {
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.Wrap = true
	table.AddRow("ID", "KIND", "CONFIG")
	for _, r := range records {
		config := string(storage.Redact(r.Config))
		if config == "" {
			config = fmt.Sprintf("<%d bytes>", len(r.Config))
		}
		table.AddRow(r.ID, r.Kind, config)
	}
	fmt.Fprintln(w, table)
}

// Package emit renders converted TAP_SCHEMA bundles as JSON documents,
// CSV record sets, or SQL load scripts.
package emit

import (
	"io"
	"os"
	"strings"

	"github.com/astro-datalab/dlfelis/internal/errors"
	"github.com/astro-datalab/dlfelis/internal/tapschema"
)

// Format selects the output rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatSQL  Format = "sql"
)

// ParseFormat resolves a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatSQL:
		return FormatSQL, nil
	default:
		return "", errors.Newf(errors.ErrTypeConfig, "unknown output format %q", name).
			WithSuggestion("use one of: json, csv, sql")
	}
}

// Write renders the bundle to dest. For the JSON and SQL formats dest is
// a file path, with "" or "-" meaning standard output. The CSV format
// writes one file per record set and needs dest to be a directory.
func Write(dest string, format Format, bundle *tapschema.Bundle) error {
	switch format {
	case FormatCSV:
		if dest == "" || dest == "-" {
			return errors.New(errors.ErrTypeConfig,
				"csv output writes five files and requires a directory").
				WithSuggestion("pass a directory with -o")
		}

		return WriteCSVDir(dest, bundle)
	case FormatJSON:
		return writeStream(dest, bundle, WriteJSON)
	case FormatSQL:
		return writeStream(dest, bundle, WriteSQL)
	default:
		return errors.Newf(errors.ErrTypeConfig, "unknown output format %q", format)
	}
}

func writeStream(dest string, bundle *tapschema.Bundle, render func(io.Writer, *tapschema.Bundle) error) error {
	if dest == "" || dest == "-" {
		return render(os.Stdout, bundle)
	}

	f, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeIO, "creating output file").WithPath(dest)
	}

	if err := render(f, bundle); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrTypeIO, "closing output file").WithPath(dest)
	}

	return nil
}

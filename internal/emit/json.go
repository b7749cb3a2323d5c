package emit

import (
	"encoding/json"
	"io"

	"github.com/astro-datalab/dlfelis/internal/errors"
	"github.com/astro-datalab/dlfelis/internal/tapschema"
)

// WriteJSON renders the bundle as a single indented JSON document with
// one array per record set, keyed schemas, tables, columns, keys, and
// key_columns. HTML escaping is off so descriptions stay readable.
func WriteJSON(w io.Writer, bundle *tapschema.Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(bundle); err != nil {
		return errors.Wrap(err, errors.ErrTypeIO, "encoding TAP_SCHEMA json")
	}

	return nil
}

package tapschema

import (
	"sort"
	"strings"

	"github.com/astro-datalab/dlfelis/internal/errors"
	"github.com/astro-datalab/dlfelis/internal/felis"
)

// TapType is the TAP_SCHEMA rendering of a Felis datatype: an ADQL type
// name plus an optional size. Size is 0 when the type carries none.
type TapType struct {
	Name string
	Size int
}

// tapDatatypes maps every Felis datatype to its TAP_SCHEMA name. The
// converter refuses datatypes outside this table rather than passing them
// through, so typos surface at conversion time instead of at query time.
var tapDatatypes = map[string]string{
	"boolean":   "boolean",
	"byte":      "smallint",
	"short":     "smallint",
	"int":       "integer",
	"long":      "bigint",
	"float":     "real",
	"double":    "double",
	"char":      "character",
	"string":    "varchar",
	"unicode":   "varchar",
	"text":      "text",
	"binary":    "blob",
	"timestamp": "timestamp",
}

// sizedDatatypes are the TAP datatypes whose columns carry a size.
var sizedDatatypes = map[string]bool{
	"character": true,
	"varchar":   true,
	"blob":      true,
}

// MapDatatype resolves a Felis datatype declaration to its TAP_SCHEMA
// type. The size comes from the declared length when present, otherwise
// from the votable:arraysize bound; unbounded declarations leave it
// unset. A bare "char" defaults to size 1.
func MapDatatype(datatype string, length int, arraysize felis.ArraySize) (TapType, error) {
	token := strings.ToLower(strings.TrimSpace(datatype))

	name, ok := tapDatatypes[token]
	if !ok {
		return TapType{}, errors.Newf(errors.ErrTypeUnsupportedType,
			"no TAP_SCHEMA datatype for felis datatype %q", datatype).
			WithSuggestion("declare one of: " + strings.Join(knownDatatypes(), ", "))
	}

	if !sizedDatatypes[name] {
		return TapType{Name: name}, nil
	}

	size := length
	if size <= 0 {
		size = arraysize.Bound()
	}

	if size <= 0 && token == "char" {
		size = 1
	}

	return TapType{Name: name, Size: size}, nil
}

func knownDatatypes() []string {
	known := make([]string, 0, len(tapDatatypes))
	for token := range tapDatatypes {
		known = append(known, token)
	}

	sort.Strings(known)

	return known
}

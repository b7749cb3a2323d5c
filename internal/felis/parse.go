package felis

import (
	stderrors "errors"
	"os"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/goccy/go-yaml"

	"github.com/astro-datalab/dlfelis/internal/errors"
)

// Option adjusts parsing behavior.
type Option func(*options)

type options struct {
	plainDescriptions bool
}

// WithPlainDescriptions rewrites HTML markup in description and unit
// fields as plain markdown text. Several survey catalogs carry
// descriptions scraped from web documentation.
func WithPlainDescriptions() Option {
	return func(o *options) {
		o.plainDescriptions = true
	}
}

// Load reads and parses the Felis document at path.
func Load(path string, opts ...Option) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeIO, "reading felis document").WithPath(path)
	}

	schema, err := Parse(data, opts...)
	if err != nil {
		var serr *errors.Error
		if stderrors.As(err, &serr) && serr.Path == "" {
			return nil, serr.WithPath(path)
		}

		return nil, err
	}

	return schema, nil
}

// Parse decodes a Felis document from YAML. The returned schema has
// normalized units and, when requested, plain-text descriptions; it is
// not otherwise validated, so structural problems (missing names, unknown
// datatypes, dangling references) surface during conversion.
func Parse(data []byte, opts ...Option) (*Schema, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeParse, "decoding felis document")
	}

	normalizeUnits(&schema)

	if o.plainDescriptions {
		if err := plainDescriptions(&schema); err != nil {
			return nil, err
		}
	}

	return &schema, nil
}

func normalizeUnits(schema *Schema) {
	for ti := range schema.Tables {
		cols := schema.Tables[ti].Columns
		for ci := range cols {
			cols[ci].FITSTunit = NormalizeUnit(cols[ci].FITSTunit)
			cols[ci].IVOAUnit = NormalizeUnit(cols[ci].IVOAUnit)
		}
	}
}

func plainDescriptions(schema *Schema) error {
	if err := stripInto(&schema.Description); err != nil {
		return describeErr(err, schema.Name)
	}

	for ti := range schema.Tables {
		table := &schema.Tables[ti]
		if err := stripInto(&table.Description); err != nil {
			return describeErr(err, schema.Name+"."+table.Name)
		}

		for ci := range table.Columns {
			col := &table.Columns[ci]
			if err := stripInto(&col.Description); err != nil {
				return describeErr(err, schema.Name+"."+table.Name+"."+col.Name)
			}
		}

		for xi := range table.Constraints {
			con := &table.Constraints[xi]
			if err := stripInto(&con.Description); err != nil {
				return describeErr(err, schema.Name+"."+table.Name+"."+con.Name)
			}
		}
	}

	return nil
}

// stripInto converts HTML markup to plain markdown in place. Text without
// markup is left untouched so markdown escaping never alters clean input.
func stripInto(s *string) error {
	if !strings.Contains(*s, "<") {
		return nil
	}

	plain, err := htmltomarkdown.ConvertString(*s)
	if err != nil {
		return err
	}

	*s = strings.TrimSpace(plain)

	return nil
}

func describeErr(err error, path string) error {
	return errors.Wrap(err, errors.ErrTypeParse, "converting description markup").WithPath(path)
}

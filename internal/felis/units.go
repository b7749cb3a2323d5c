package felis

import "strings"

// unitAliases maps unit spellings seen in survey metadata to their VOUnit
// form. Keys are matched case-sensitively after whitespace trimming; the
// HTML spellings come from catalogs whose descriptions were scraped from
// web documentation.
var unitAliases = map[string]string{
	"nanomaggies":          "nanomaggy",
	"nanomaggies^2":        "nanomaggy^2",
	"nanomaggies^{-2}":     "nanomaggy^-2",
	"1/nanomaggies^2":      "nanomaggy^-2",
	"nanomaggies/arcsec^2": "nanomaggy arcsec^-2",

	"sec":       "s",
	"days":      "d",
	"years":     "yr",
	"Gyrs":      "Gyr",
	"degrees":   "deg",
	"microns":   "um",
	"Angstroms": "Angstrom",
	"Ang":       "Angstrom",

	"1e-17 erg/s/cm^2/AA":                        "1e-17 erg s-1 cm-2 Angstrom-1",
	"10<sup>-17</sup> ergs/cm<sup>2</sup>/s/A":   "1e-17 erg s-1 cm-2 Angstrom-1",
	"1e-17 erg/s/cm^2":                           "1e-17 erg s-1 cm-2",
	"10<sup>-17</sup> ergs/cm<sup>2</sup>/s":     "1e-17 erg s-1 cm-2",
	"ergs/cm2/s":                                 "erg s-1 cm-2",
	"erg/cm2/s":                                  "erg s-1 cm-2",
	"W/m2/Hz":                                    "W m-2 Hz-1",
	"log(counts/s)":                              "log(count/s)",
}

// NormalizeUnit maps a declared unit to its VOUnit spelling. Unknown
// units pass through unchanged; normalization never fails.
func NormalizeUnit(unit string) string {
	trimmed := strings.TrimSpace(unit)
	if norm, ok := unitAliases[trimmed]; ok {
		return norm
	}

	return trimmed
}

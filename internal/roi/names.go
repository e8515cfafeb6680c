// Package roi turns ranked atlas candidates into spherical-mask requests:
// it validates the caller's entry/radius selection, abbreviates region names
// for artifact filenames, and checks selected spheres for overlap.
package roi

import "strings"

// regionAbbreviations maps Harvard-Oxford cortical region names to the short
// codes used in mask filenames.
var regionAbbreviations = map[string]string{
	"Frontal Pole":                                           "FP",
	"Insular Cortex":                                         "Insula",
	"Superior Frontal Gyrus":                                 "SFG",
	"Middle Frontal Gyrus":                                   "MFG",
	"Inferior Frontal Gyrus, pars triangularis":              "IFGtriang",
	"Inferior Frontal Gyrus, pars opercularis":               "IFGoperc",
	"Precentral Gyrus":                                       "PreCG",
	"Temporal Pole":                                          "TP",
	"Superior Temporal Gyrus, anterior division":             "STGant",
	"Superior Temporal Gyrus, posterior division":            "STGpost",
	"Middle Temporal Gyrus, anterior division":               "MTGant",
	"Middle Temporal Gyrus, posterior division":              "MTGpost",
	"Middle Temporal Gyrus, temporooccipital part":           "MTGtoc",
	"Inferior Temporal Gyrus, anterior division":             "ITGant",
	"Inferior Temporal Gyrus, posterior division":            "ITGpost",
	"Inferior Temporal Gyrus, temporooccipital part":         "ITGtoc",
	"Postcentral Gyrus":                                      "PostCG",
	"Superior Parietal Lobule":                               "SPL",
	"Supramarginal Gyrus, anterior division":                 "SMGant",
	"Supramarginal Gyrus, posterior division":                "SMGpost",
	"Angular Gyrus":                                          "AG",
	"Lateral Occipital Cortex, superior division":            "LOCsup",
	"Lateral Occipital Cortex, inferior division":            "LOCinf",
	"Intracalcarine Cortex":                                  "ICC",
	"Frontal Medial Cortex":                                  "FMC",
	"Juxtapositional Lobule Cortex (formerly Supplementary Motor Cortex)": "SMA",
	"Subcallosal Cortex":                                     "SubCalC",
	"Paracingulate Gyrus":                                    "PaCG",
	"Cingulate Gyrus, anterior division":                     "ACC",
	"Cingulate Gyrus, posterior division":                    "PCC",
	"Precuneous Cortex":                                      "Precuneous",
	"Cuneal Cortex":                                          "Cuneal",
	"Frontal Orbital Cortex":                                 "OFC",
	"Parahippocampal Gyrus, anterior division":               "PHGant",
	"Parahippocampal Gyrus, posterior division":              "PHGpost",
	"Lingual Gyrus":                                          "Lingual",
	"Temporal Fusiform Cortex, anterior division":            "TFusCant",
	"Temporal Fusiform Cortex, posterior division":           "TFusCpost",
	"Temporal Occipital Fusiform Cortex":                     "TOFusC",
	"Occipital Fusiform Gyrus":                               "OFusG",
	"Frontal Operculum Cortex":                               "FO",
	"Central Opercular Cortex":                               "CO",
	"Parietal Operculum Cortex":                              "PO",
	"Planum Polare":                                          "PP",
	"Heschl's Gyrus (includes H1 and H2)":                    "HG",
	"Planum Temporale":                                       "PT",
	"Supracalcarine Cortex":                                  "SCC",
	"Occipital Pole":                                         "OP",
}

// AbbreviateRegion returns the filename-safe short code for a region name.
// Names outside the lookup table fall back to a deterministic transform:
// parenthetical content stripped, commas removed, whitespace collapsed to
// underscores.
func AbbreviateRegion(name string) string {
	name = strings.TrimSpace(name)
	if abbr, ok := regionAbbreviations[name]; ok {
		return abbr
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(stripParens(name), ",", "")), "_")
}

// CleanRegion strips parenthetical annotations and surrounding whitespace
// from a region label for display. Requests keep the raw atlas name so the
// abbreviation table still matches.
func CleanRegion(name string) string {
	return strings.TrimSpace(stripParens(name))
}

func stripParens(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

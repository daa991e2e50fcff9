package params

import (
	"fmt"

	"github.com/mtc-analytics/patlens/pkg/types"
)

// Shared option sets maintained centrally so every query offering a
// jurisdiction or technology-field filter presents the same choices.
const (
	OptionSetJurisdictions = "jurisdictions"
	OptionSetTechFields    = "tech_fields"
)

// Jurisdictions lists the patent offices offered by the dashboard filters.
// Option values are the appln_auth codes used in PATSTAT.
var Jurisdictions = []types.Option{
	{Label: "European Patent Office (EP)", Value: "EP"},
	{Label: "United States (US)", Value: "US"},
	{Label: "China (CN)", Value: "CN"},
	{Label: "Japan (JP)", Value: "JP"},
	{Label: "South Korea (KR)", Value: "KR"},
	{Label: "Germany (DE)", Value: "DE"},
	{Label: "France (FR)", Value: "FR"},
	{Label: "United Kingdom (GB)", Value: "GB"},
	{Label: "WIPO (WO)", Value: "WO"},
}

// TechFields lists the 35 WIPO technology fields with their sector grouping,
// per the WIPO IPC-Technology Concordance. Option values are techn_field_nr.
var TechFields = []types.Option{
	{Label: "Electrical machinery, apparatus, energy", Value: 1, Group: "Electrical engineering"},
	{Label: "Audio-visual technology", Value: 2, Group: "Electrical engineering"},
	{Label: "Telecommunications", Value: 3, Group: "Electrical engineering"},
	{Label: "Digital communication", Value: 4, Group: "Electrical engineering"},
	{Label: "Basic communication processes", Value: 5, Group: "Electrical engineering"},
	{Label: "Computer technology", Value: 6, Group: "Electrical engineering"},
	{Label: "IT methods for management", Value: 7, Group: "Electrical engineering"},
	{Label: "Semiconductors", Value: 8, Group: "Electrical engineering"},
	{Label: "Optics", Value: 9, Group: "Instruments"},
	{Label: "Measurement", Value: 10, Group: "Instruments"},
	{Label: "Analysis of biological materials", Value: 11, Group: "Instruments"},
	{Label: "Control", Value: 12, Group: "Instruments"},
	{Label: "Medical technology", Value: 13, Group: "Instruments"},
	{Label: "Organic fine chemistry", Value: 14, Group: "Chemistry"},
	{Label: "Biotechnology", Value: 15, Group: "Chemistry"},
	{Label: "Pharmaceuticals", Value: 16, Group: "Chemistry"},
	{Label: "Macromolecular chemistry, polymers", Value: 17, Group: "Chemistry"},
	{Label: "Food chemistry", Value: 18, Group: "Chemistry"},
	{Label: "Basic materials chemistry", Value: 19, Group: "Chemistry"},
	{Label: "Materials, metallurgy", Value: 20, Group: "Chemistry"},
	{Label: "Surface technology, coating", Value: 21, Group: "Chemistry"},
	{Label: "Micro-structural and nano-technology", Value: 22, Group: "Chemistry"},
	{Label: "Chemical engineering", Value: 23, Group: "Chemistry"},
	{Label: "Environmental technology", Value: 24, Group: "Chemistry"},
	{Label: "Handling", Value: 25, Group: "Mechanical engineering"},
	{Label: "Machine tools", Value: 26, Group: "Mechanical engineering"},
	{Label: "Engines, pumps, turbines", Value: 27, Group: "Mechanical engineering"},
	{Label: "Textile and paper machines", Value: 28, Group: "Mechanical engineering"},
	{Label: "Other special machines", Value: 29, Group: "Mechanical engineering"},
	{Label: "Thermal processes and apparatus", Value: 30, Group: "Mechanical engineering"},
	{Label: "Mechanical elements", Value: 31, Group: "Mechanical engineering"},
	{Label: "Transport", Value: 32, Group: "Mechanical engineering"},
	{Label: "Furniture, games", Value: 33, Group: "Other fields"},
	{Label: "Other consumer goods", Value: 34, Group: "Other fields"},
	{Label: "Civil engineering", Value: 35, Group: "Other fields"},
}

var optionSets = map[string][]types.Option{
	OptionSetJurisdictions: Jurisdictions,
	OptionSetTechFields:    TechFields,
}

// OptionSet resolves a named shared option set.
func OptionSet(ref string) ([]types.Option, error) {
	opts, ok := optionSets[ref]
	if !ok {
		return nil, fmt.Errorf("unknown option set: %s", ref)
	}
	return opts, nil
}

// OptionSets returns all shared option sets, for the form-rendering API.
func OptionSets() map[string][]types.Option {
	out := make(map[string][]types.Option, len(optionSets))
	for name, opts := range optionSets {
		out[name] = opts
	}
	return out
}

// resolveOptions returns the effective option list for a select parameter:
// its literal list, or the shared set named by OptionsRef.
func resolveOptions(def types.ParameterDefinition) ([]types.Option, error) {
	if len(def.Options) > 0 {
		return def.Options, nil
	}
	if def.OptionsRef != "" {
		return OptionSet(def.OptionsRef)
	}
	return nil, nil
}

package calendar

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Regions whose weeks do not start on Monday, from CLDR supplemental weekData
var (
	sundayRegions = regionSet(
		"AG", "AS", "AU", "BD", "BR", "BS", "BT", "BW", "BZ", "CA", "CN", "CO", "DM", "DO",
		"ET", "GT", "GU", "HK", "HN", "ID", "IL", "IN", "JM", "JP", "KE", "KH", "KR", "LA",
		"MH", "MM", "MO", "MT", "MX", "MZ", "NI", "NP", "PA", "PE", "PH", "PK", "PR", "PT",
		"PY", "SA", "SG", "SV", "TH", "TT", "TW", "UM", "US", "VE", "VI", "WS", "YE", "ZA", "ZW",
	)
	saturdayRegions = regionSet(
		"AE", "AF", "BH", "DJ", "DZ", "EG", "IQ", "IR", "JO", "KW", "LY", "OM", "QA", "SD", "SY",
	)
	fridayRegions = regionSet("MV")
)

func regionSet(codes ...string) map[language.Region]struct{} {
	out := make(map[language.Region]struct{}, len(codes))
	for _, c := range codes {
		out[language.MustParseRegion(c)] = struct{}{}
	}
	return out
}

// FirstDayForLocale returns the customary first day of week for a BCP-47 tag
// such as "en-US" or "pt". A bare language is resolved to its likely region.
// Unparseable tags fall back to DefaultFirstDay.
func FirstDayForLocale(tag string) time.Weekday {
	if strings.TrimSpace(tag) == "" {
		return DefaultFirstDay
	}
	t, err := language.Parse(tag)
	if err != nil {
		return DefaultFirstDay
	}
	region, conf := t.Region()
	if conf == language.No {
		return DefaultFirstDay
	}
	switch {
	case has(sundayRegions, region):
		return time.Sunday
	case has(saturdayRegions, region):
		return time.Saturday
	case has(fridayRegions, region):
		return time.Friday
	default:
		return time.Monday
	}
}

func has(set map[language.Region]struct{}, r language.Region) bool {
	_, ok := set[r]
	return ok
}

// Package language maps between the ISO 639 codes the detector reports,
// the 2-letter codes narration voices are keyed by, and display names for
// the CLI job views.
package language

import "strings"

// entry ties a 2-letter code to its 3-letter forms and display name. The
// alternate 3-letter code covers the bibliographic variants ("fre", "ger")
// some detectors emit.
type entry struct {
	iso2    string
	iso3    string
	alt3    string
	display string
}

var table = []entry{
	{"en", "eng", "", "English"},
	{"es", "spa", "", "Spanish"},
	{"fr", "fra", "fre", "French"},
	{"de", "deu", "ger", "German"},
	{"it", "ita", "", "Italian"},
	{"pt", "por", "", "Portuguese"},
	{"ja", "jpn", "", "Japanese"},
	{"ko", "kor", "", "Korean"},
	{"zh", "zho", "chi", "Chinese"},
	{"ru", "rus", "", "Russian"},
	{"ar", "ara", "", "Arabic"},
	{"hi", "hin", "", "Hindi"},
	{"nl", "nld", "dut", "Dutch"},
	{"pl", "pol", "", "Polish"},
	{"sv", "swe", "", "Swedish"},
	{"da", "dan", "", "Danish"},
	{"no", "nor", "", "Norwegian"},
	{"fi", "fin", "", "Finnish"},
}

var byCode = func() map[string]*entry {
	index := make(map[string]*entry, len(table)*3)
	for i := range table {
		e := &table[i]
		index[e.iso2] = e
		index[e.iso3] = e
		if e.alt3 != "" {
			index[e.alt3] = e
		}
	}
	return index
}()

// ToISO2 normalizes a 2- or 3-letter language code to ISO 639-1. Unknown
// 2-letter codes pass through; unknown 3-letter codes yield "".
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e, ok := byCode[code]; ok {
		return e.iso2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// DisplayName returns a readable name for a language code: "Unknown" for
// empty input, the uppercased code when unrecognized.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	if e, ok := byCode[strings.ToLower(code)]; ok {
		return e.display
	}
	return strings.ToUpper(code)
}

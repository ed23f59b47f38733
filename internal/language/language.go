package language

import (
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"
)

type entry struct {
	code2   string // ISO 639-1 (2-letter)
	code3   string // ISO 639-2 primary (3-letter)
	alt3    string // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string // Human-readable name
}

var languages = []entry{
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
	{"tr", "tur", "", "Turkish"},
	{"uk", "ukr", "", "Ukrainian"},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byName  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byName = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		byName[strings.ToLower(e.display)] = e
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byName[code]; ok {
		return e
	}
	return nil
}

// Normalize reduces any recognizable language identifier to ISO 639-1: plain
// 2- or 3-letter codes or display names from the table, or BCP-47 tags like
// "en-US" and "pt_BR" via the x/text parser. Returns empty string for
// unrecognized input.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	tag, err := xlang.Parse(strings.ReplaceAll(code, "_", "-"))
	if err == nil {
		base, conf := tag.Base()
		if conf != xlang.No {
			if normalized := base.String(); len(normalized) == 2 {
				return normalized
			}
		}
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// ToISO3 converts any recognized language code to ISO 639-2 (3-letter), the
// form container metadata expects. Returns "und" for unrecognized input,
// passing through unknown 3-letter codes.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if normalized := Normalize(code); normalized != "" {
		if e := lookup(normalized); e != nil {
			return e.code3
		}
	}
	if len(code) == 3 {
		return code
	}
	return "und"
}

// DisplayName returns a human-readable language name for any recognized code.
// Unrecognized codes are title-cased as a best effort; empty input yields
// "Unknown".
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if e := lookup(trimmed); e != nil {
		return e.display
	}
	if normalized := Normalize(trimmed); normalized != "" {
		if e := lookup(normalized); e != nil {
			return e.display
		}
	}
	return cases.Title(xlang.Und).String(strings.ToLower(trimmed))
}

package deka

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Language is one entry of the language catalog.
type Language struct {
	Code    LanguageCode
	Name    string   // English display name
	Native  string   // endonym, if different from Name
	ISO3    string   // ISO 639-3 (or 639-2/T) code
	Aliases []string // extra selectors: synonyms, dialect names, legacy codes
}

// catalog is the master language table. A name that folds onto another
// language's code is ambiguous and resolves to neither ("ga" is the Irish
// code and the name of Ga, "gaa").
var catalog = []Language{
	// Major languages
	{Code: "en", Name: "English", ISO3: "eng"},
	{Code: "fr", Name: "French", Native: "Français", ISO3: "fra", Aliases: []string{"fre"}},
	{Code: "es", Name: "Spanish", Native: "Español", ISO3: "spa", Aliases: []string{"castilian", "castellano"}},
	{Code: "de", Name: "German", Native: "Deutsch", ISO3: "deu", Aliases: []string{"ger"}},
	{Code: "it", Name: "Italian", Native: "Italiano", ISO3: "ita"},
	{Code: "pt", Name: "Portuguese", Native: "Português", ISO3: "por", Aliases: []string{"pt-pt", "european portuguese", "portuguese (portugal)"}},
	{Code: "pt-BR", Name: "Brazilian Portuguese", Native: "Português do Brasil", Aliases: []string{"portuguese (brazil)", "brazilian"}},
	{Code: "nl", Name: "Dutch", Native: "Nederlands", ISO3: "nld", Aliases: []string{"dut", "flemish"}},
	{Code: "ru", Name: "Russian", Native: "Русский", ISO3: "rus"},
	{Code: "uk", Name: "Ukrainian", Native: "Українська", ISO3: "ukr"},
	{Code: "pl", Name: "Polish", Native: "Polski", ISO3: "pol"},
	{Code: "cs", Name: "Czech", Native: "Čeština", ISO3: "ces", Aliases: []string{"cze"}},
	{Code: "sk", Name: "Slovak", Native: "Slovenčina", ISO3: "slk", Aliases: []string{"slo"}},
	{Code: "sl", Name: "Slovenian", Native: "Slovenščina", ISO3: "slv", Aliases: []string{"slovene"}},
	{Code: "hr", Name: "Croatian", Native: "Hrvatski", ISO3: "hrv"},
	{Code: "sr", Name: "Serbian", Native: "Српски", ISO3: "srp"},
	{Code: "bg", Name: "Bulgarian", Native: "Български", ISO3: "bul"},
	{Code: "ro", Name: "Romanian", Native: "Română", ISO3: "ron", Aliases: []string{"rum", "moldavian"}},
	{Code: "hu", Name: "Hungarian", Native: "Magyar", ISO3: "hun"},
	{Code: "el", Name: "Greek", Native: "Ελληνικά", ISO3: "ell", Aliases: []string{"gre"}},
	{Code: "tr", Name: "Turkish", Native: "Türkçe", ISO3: "tur"},
	{Code: "sv", Name: "Swedish", Native: "Svenska", ISO3: "swe"},
	{Code: "da", Name: "Danish", Native: "Dansk", ISO3: "dan"},
	{Code: "no", Name: "Norwegian", Native: "Norsk", ISO3: "nor", Aliases: []string{"nb", "nob", "bokmal", "bokmål", "norwegian bokmal", "norwegian bokmål"}},
	{Code: "fi", Name: "Finnish", Native: "Suomi", ISO3: "fin"},
	{Code: "et", Name: "Estonian", Native: "Eesti", ISO3: "est"},
	{Code: "lv", Name: "Latvian", Native: "Latviešu", ISO3: "lav"},
	{Code: "lt", Name: "Lithuanian", Native: "Lietuvių", ISO3: "lit"},
	{Code: "ga", Name: "Irish", Native: "Gaeilge", ISO3: "gle", Aliases: []string{"irish gaelic"}},
	{Code: "cy", Name: "Welsh", Native: "Cymraeg", ISO3: "cym", Aliases: []string{"wel"}},
	{Code: "is", Name: "Icelandic", Native: "Íslenska", ISO3: "isl", Aliases: []string{"ice"}},
	{Code: "mt", Name: "Maltese", Native: "Malti", ISO3: "mlt"},
	{Code: "sq", Name: "Albanian", Native: "Shqip", ISO3: "sqi", Aliases: []string{"alb"}},
	{Code: "mk", Name: "Macedonian", Native: "Македонски", ISO3: "mkd", Aliases: []string{"mac"}},
	{Code: "ca", Name: "Catalan", Native: "Català", ISO3: "cat", Aliases: []string{"valencian"}},
	{Code: "gl", Name: "Galician", Native: "Galego", ISO3: "glg"},
	{Code: "eu", Name: "Basque", Native: "Euskara", ISO3: "eus", Aliases: []string{"baq"}},
	{Code: "hy", Name: "Armenian", Native: "Հայերեն", ISO3: "hye", Aliases: []string{"arm"}},
	{Code: "ka", Name: "Georgian", Native: "ქართული", ISO3: "kat", Aliases: []string{"geo"}},
	{Code: "az", Name: "Azerbaijani", Native: "Azərbaycanca", ISO3: "aze", Aliases: []string{"azeri"}},
	{Code: "kk", Name: "Kazakh", Native: "Қазақ тілі", ISO3: "kaz"},
	{Code: "uz", Name: "Uzbek", Native: "Oʻzbekcha", ISO3: "uzb"},
	{Code: "mn", Name: "Mongolian", Native: "Монгол", ISO3: "mon"},

	// Middle East and South Asia
	{Code: "ar", Name: "Arabic", Native: "العربية", ISO3: "ara"},
	{Code: "he", Name: "Hebrew", Native: "עברית", ISO3: "heb", Aliases: []string{"iw"}},
	{Code: "fa", Name: "Persian", Native: "فارسی", ISO3: "fas", Aliases: []string{"farsi", "per"}},
	{Code: "ur", Name: "Urdu", Native: "اردو", ISO3: "urd"},
	{Code: "ps", Name: "Pashto", Native: "پښتو", ISO3: "pus", Aliases: []string{"pushto"}},
	{Code: "sd", Name: "Sindhi", Native: "سنڌي", ISO3: "snd"},
	{Code: "ug", Name: "Uyghur", Native: "ئۇيغۇرچە", ISO3: "uig", Aliases: []string{"uighur"}},
	{Code: "hi", Name: "Hindi", Native: "हिन्दी", ISO3: "hin"},
	{Code: "bn", Name: "Bengali", Native: "বাংলা", ISO3: "ben", Aliases: []string{"bangla"}},
	{Code: "pa", Name: "Punjabi", Native: "ਪੰਜਾਬੀ", ISO3: "pan", Aliases: []string{"panjabi"}},
	{Code: "gu", Name: "Gujarati", Native: "ગુજરાતી", ISO3: "guj"},
	{Code: "mr", Name: "Marathi", Native: "मराठी", ISO3: "mar"},
	{Code: "ta", Name: "Tamil", Native: "தமிழ்", ISO3: "tam"},
	{Code: "te", Name: "Telugu", Native: "తెలుగు", ISO3: "tel"},
	{Code: "kn", Name: "Kannada", Native: "ಕನ್ನಡ", ISO3: "kan"},
	{Code: "ml", Name: "Malayalam", Native: "മലയാളം", ISO3: "mal"},
	{Code: "ne", Name: "Nepali", Native: "नेपाली", ISO3: "nep"},
	{Code: "si", Name: "Sinhala", Native: "සිංහල", ISO3: "sin", Aliases: []string{"sinhalese"}},

	// East and Southeast Asia
	{Code: "zh", Name: "Chinese", Native: "中文", ISO3: "zho", Aliases: []string{"chi", "mandarin", "simplified chinese", "chinese (simplified)", "chinese simplified", "zh-cn", "zh-hans", "zh-sg"}},
	{Code: "zh-TW", Name: "Traditional Chinese", Native: "繁體中文", Aliases: []string{"chinese (traditional)", "chinese traditional", "zh-hant", "zh-hk", "taiwanese mandarin"}},
	{Code: "ja", Name: "Japanese", Native: "日本語", ISO3: "jpn"},
	{Code: "ko", Name: "Korean", Native: "한국어", ISO3: "kor"},
	{Code: "th", Name: "Thai", Native: "ไทย", ISO3: "tha"},
	{Code: "vi", Name: "Vietnamese", Native: "Tiếng Việt", ISO3: "vie"},
	{Code: "id", Name: "Indonesian", Native: "Bahasa Indonesia", ISO3: "ind"},
	{Code: "ms", Name: "Malay", Native: "Bahasa Melayu", ISO3: "msa", Aliases: []string{"may"}},
	{Code: "tl", Name: "Filipino", ISO3: "fil", Aliases: []string{"tagalog", "tgl", "pilipino"}},
	{Code: "km", Name: "Khmer", Native: "ភាសាខ្មែរ", ISO3: "khm", Aliases: []string{"cambodian"}},
	{Code: "lo", Name: "Lao", Native: "ລາວ", ISO3: "lao", Aliases: []string{"laotian"}},
	{Code: "my", Name: "Burmese", Native: "မြန်မာ", ISO3: "mya", Aliases: []string{"bur", "myanmar"}},

	// Africa: widely served
	{Code: "af", Name: "Afrikaans", ISO3: "afr"},
	{Code: "sw", Name: "Swahili", Native: "Kiswahili", ISO3: "swa"},
	{Code: "am", Name: "Amharic", Native: "አማርኛ", ISO3: "amh"},
	{Code: "so", Name: "Somali", Native: "Soomaali", ISO3: "som"},
	{Code: "zu", Name: "Zulu", Native: "isiZulu", ISO3: "zul"},
	{Code: "xh", Name: "Xhosa", Native: "isiXhosa", ISO3: "xho"},
	{Code: "ha", Name: "Hausa", ISO3: "hau"},
	{Code: "ig", Name: "Igbo", ISO3: "ibo"},
	{Code: "yo", Name: "Yoruba", Native: "Yorùbá", ISO3: "yor"},
	{Code: "mg", Name: "Malagasy", ISO3: "mlg"},
	{Code: "ny", Name: "Chichewa", ISO3: "nya", Aliases: []string{"nyanja", "chewa"}},
	{Code: "sn", Name: "Shona", Native: "chiShona", ISO3: "sna"},
	{Code: "st", Name: "Sesotho", ISO3: "sot", Aliases: []string{"southern sotho", "sotho"}},
	{Code: "rw", Name: "Kinyarwanda", ISO3: "kin"},
	{Code: "om", Name: "Oromo", Native: "Afaan Oromoo", ISO3: "orm"},
	{Code: "ti", Name: "Tigrinya", Native: "ትግርኛ", ISO3: "tir"},

	// Africa: under-resourced and regional
	{Code: "ak", Name: "Akan", ISO3: "aka"},
	{Code: "tw", Name: "Twi", ISO3: "twi", Aliases: []string{"asante twi", "ashanti twi", "akuapem twi", "asante"}},
	{Code: "fat", Name: "Fante", Aliases: []string{"fanti", "mfantse"}},
	{Code: "gaa", Name: "Ga", Native: "Gã", Aliases: []string{"ga (ghana)", "ga language"}},
	{Code: "ee", Name: "Ewe", Native: "Eʋegbe", ISO3: "ewe", Aliases: []string{"eve"}},
	{Code: "dag", Name: "Dagbani", Aliases: []string{"dagbane", "dagomba"}},
	{Code: "gur", Name: "Gurene", Aliases: []string{"frafra", "farefare", "gurenne"}},
	{Code: "ki", Name: "Kikuyu", Native: "Gĩkũyũ", ISO3: "kik", Aliases: []string{"gikuyu"}},
	{Code: "luo", Name: "Luo", Aliases: []string{"dholuo"}},
	{Code: "mer", Name: "Kimeru", Aliases: []string{"meru"}},
	{Code: "lg", Name: "Luganda", ISO3: "lug", Aliases: []string{"ganda"}},
	{Code: "ln", Name: "Lingala", ISO3: "lin"},
	{Code: "wo", Name: "Wolof", ISO3: "wol"},
	{Code: "ff", Name: "Fula", ISO3: "ful", Aliases: []string{"fulani", "fulfulde", "pulaar"}},
	{Code: "bm", Name: "Bambara", ISO3: "bam", Aliases: []string{"bamanankan"}},
	{Code: "tn", Name: "Setswana", ISO3: "tsn", Aliases: []string{"tswana"}},
	{Code: "kri", Name: "Krio"},
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[LanguageCode]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

var (
	languagesByCode map[LanguageCode]Language
	languageIndex   map[string]LanguageCode
	ambiguousKeys   map[string][]LanguageCode
	languageCodes   []LanguageCode
)

func init() {
	languagesByCode = make(map[LanguageCode]Language, len(catalog))
	languageIndex = make(map[string]LanguageCode, len(catalog)*4)
	ambiguousKeys = make(map[string][]LanguageCode)
	fromCode := make(map[string]bool)

	for _, lang := range catalog {
		if _, dup := languagesByCode[lang.Code]; dup {
			panic(fmt.Sprintf("deka: duplicate language code %q", lang.Code))
		}
		languagesByCode[lang.Code] = lang
		languageCodes = append(languageCodes, lang.Code)
		for _, key := range []string{string(lang.Code), lang.ISO3} {
			indexLanguageKey(key, lang.Code, fromCode, true)
		}
	}
	for _, lang := range catalog {
		keys := append([]string{lang.Name, lang.Native}, lang.Aliases...)
		for _, key := range keys {
			indexLanguageKey(key, lang.Code, fromCode, false)
		}
	}

	sort.Slice(languageCodes, func(i, j int) bool { return languageCodes[i] < languageCodes[j] })
}

func indexLanguageKey(raw string, code LanguageCode, fromCode map[string]bool, isCode bool) {
	key := foldLanguageKey(raw)
	if key == "" {
		return
	}
	if candidates, ok := ambiguousKeys[key]; ok {
		if !slices.Contains(candidates, code) {
			ambiguousKeys[key] = append(candidates, code)
		}
		return
	}
	existing, ok := languageIndex[key]
	switch {
	case !ok:
		languageIndex[key] = code
		fromCode[key] = isCode
	case existing == code:
	case fromCode[key] && !isCode:
		// A name colliding with another language's code: keep neither.
		delete(languageIndex, key)
		ambiguousKeys[key] = []LanguageCode{existing, code}
	default:
		panic(fmt.Sprintf("deka: language selector %q maps to both %q and %q", raw, existing, code))
	}
}

// selectorHints returns the keys that still resolve to code alone.
func selectorHints(code LanguageCode) []string {
	lang := languagesByCode[code]
	var hints []string
	for _, raw := range []string{string(lang.Code), lang.ISO3, lang.Name, lang.Native} {
		key := foldLanguageKey(raw)
		if key == "" || languageIndex[key] != code || slices.Contains(hints, key) {
			continue
		}
		hints = append(hints, key)
	}
	return hints
}

func foldLanguageKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "_", "-")
	return strings.Join(strings.Fields(key), " ")
}

// NormalizeLanguage resolves a language selector (name, synonym, native name,
// ISO 639 code or BCP-47 tag) to its canonical code. It never guesses: a
// selector without a mapping fails with *UnknownLanguageError.
func NormalizeLanguage(selector string) (LanguageCode, error) {
	key := foldLanguageKey(selector)
	if key == "" {
		return "", &UnknownLanguageError{Selector: selector}
	}
	if code, ok := languageIndex[key]; ok {
		return code, nil
	}
	if candidates, ok := ambiguousKeys[key]; ok {
		return "", &UnknownLanguageError{Selector: selector, Candidates: candidates}
	}
	if code, ok := resolveLanguageTag(key); ok {
		return code, nil
	}
	return "", &UnknownLanguageError{Selector: selector}
}

// resolveLanguageTag maps a well-formed tag such as "fr-CA" to a catalog
// entry by its base language. The base must be written out: "und-JP" is not
// Japanese. An explicit script other than the base language's default is
// rejected ("sr-Latn" is not "sr").
func resolveLanguageTag(key string) (LanguageCode, bool) {
	if strings.ContainsRune(key, ' ') {
		return "", false
	}
	tag, err := language.Parse(key)
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf != language.Exact {
		return "", false
	}

	code, ok := languageIndex[base.String()]
	if !ok {
		code, ok = languageIndex[base.ISO3()]
	}
	if !ok {
		return "", false
	}

	if script, sconf := tag.Script(); sconf == language.Exact {
		defaultScript, _ := language.Make(base.String()).Script()
		if script != defaultScript {
			return "", false
		}
	}
	return code, true
}

// ListLanguages returns every canonical code of the master catalog, sorted.
func ListLanguages() []LanguageCode {
	out := make([]LanguageCode, len(languageCodes))
	copy(out, languageCodes)
	return out
}

// LookupLanguage returns the catalog entry for a canonical code.
func LookupLanguage(code LanguageCode) (Language, bool) {
	lang, ok := languagesByCode[code]
	return lang, ok
}

// LanguageName returns the English name for a language code.
// Falls back to the code itself if not found.
func LanguageName(code LanguageCode) string {
	if lang, ok := languagesByCode[code]; ok {
		return lang.Name
	}
	return string(code)
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(code LanguageCode) string {
	base := strings.SplitN(string(code), "-", 2)[0]
	if RTLLanguages[LanguageCode(strings.ToLower(base))] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(code LanguageCode) bool {
	return GetDirection(code) == "rtl"
}

// normalizeSource treats an empty selector or "auto" as AutoDetect.
func normalizeSource(selector string) (LanguageCode, error) {
	trimmed := strings.TrimSpace(selector)
	if trimmed == "" || strings.EqualFold(trimmed, string(AutoDetect)) {
		return AutoDetect, nil
	}
	return NormalizeLanguage(trimmed)
}

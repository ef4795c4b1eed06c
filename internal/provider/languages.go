package provider

// languageNames maps two-letter (or three-letter, for Filipino) locale
// prefixes to the language name shown as a catalog category.
var languageNames = map[string]string{
	"af":  "Afrikaans",
	"am":  "Amharic",
	"ar":  "Arabic",
	"az":  "Azerbaijani",
	"bg":  "Bulgarian",
	"bn":  "Bengali",
	"ca":  "Catalan",
	"cs":  "Czech",
	"cy":  "Welsh",
	"da":  "Danish",
	"de":  "German",
	"el":  "Greek",
	"en":  "English",
	"es":  "Spanish",
	"et":  "Estonian",
	"eu":  "Basque",
	"fa":  "Persian",
	"fi":  "Finnish",
	"fil": "Filipino",
	"fr":  "French",
	"ga":  "Irish",
	"gl":  "Galician",
	"gu":  "Gujarati",
	"he":  "Hebrew",
	"hi":  "Hindi",
	"hr":  "Croatian",
	"hu":  "Hungarian",
	"hy":  "Armenian",
	"id":  "Indonesian",
	"is":  "Icelandic",
	"it":  "Italian",
	"ja":  "Japanese",
	"jv":  "Javanese",
	"ka":  "Georgian",
	"kk":  "Kazakh",
	"km":  "Khmer",
	"kn":  "Kannada",
	"ko":  "Korean",
	"lo":  "Lao",
	"lt":  "Lithuanian",
	"lv":  "Latvian",
	"mk":  "Macedonian",
	"ml":  "Malayalam",
	"mn":  "Mongolian",
	"mr":  "Marathi",
	"ms":  "Malay",
	"mt":  "Maltese",
	"my":  "Burmese",
	"nb":  "Norwegian",
	"ne":  "Nepali",
	"nl":  "Dutch",
	"pa":  "Punjabi",
	"pl":  "Polish",
	"ps":  "Pashto",
	"pt":  "Portuguese",
	"ro":  "Romanian",
	"ru":  "Russian",
	"si":  "Sinhala",
	"sk":  "Slovak",
	"sl":  "Slovenian",
	"sq":  "Albanian",
	"sr":  "Serbian",
	"su":  "Sundanese",
	"sv":  "Swedish",
	"sw":  "Swahili",
	"ta":  "Tamil",
	"te":  "Telugu",
	"th":  "Thai",
	"tr":  "Turkish",
	"uk":  "Ukrainian",
	"ur":  "Urdu",
	"uz":  "Uzbek",
	"vi":  "Vietnamese",
	"zh":  "Chinese",
	"zu":  "Zulu",
}

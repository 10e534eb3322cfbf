// Package langreg maps Wikipedia language edition codes to display names.
package langreg

import "fmt"

// names covers the top 25 language editions present in the source data.
// Codes outside the registry display verbatim.
var names = map[string]string{
	"en": "English",
	"ar": "Arabic",
	"fr": "French",
	"es": "Spanish",
	"de": "German",
	"pt": "Portuguese",
	"zh": "Chinese",
	"ru": "Russian",
	"uk": "Ukrainian",
	"it": "Italian",
	"ja": "Japanese",
	"nl": "Dutch",
	"id": "Indonesian",
	"pl": "Polish",
	"sv": "Swedish",
	"fi": "Finnish",
	"cs": "Czech",
	"ko": "Korean",
	"he": "Hebrew",
	"el": "Greek",
	"da": "Danish",
	"hu": "Hungarian",
	"hi": "Hindi",
	"ro": "Romanian",
	"bg": "Bulgarian",
}

// DisplayName returns the full language name for a code, or the code
// itself when the registry does not know it.
func DisplayName(code string) string {
	if name, ok := names[code]; ok {
		return name
	}
	return code
}

// Label returns the table row label for a code, e.g. "English (en)".
func Label(code string) string {
	return fmt.Sprintf("%s (%s)", DisplayName(code), code)
}

// Known reports whether the code is present in the registry.
func Known(code string) bool {
	_, ok := names[code]
	return ok
}

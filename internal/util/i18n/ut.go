package i18n

import (
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ja"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
)

// UT holds the translators of every supported UI language. English is the fallback.
var UT = ut.New(en.New(), en.New(), ja.New(), zh.New())

// Lang maps a translator to the language code used for display labels.
func Lang(trans ut.Translator) string {
	if trans == nil {
		return "en"
	}
	switch trans.Locale() {
	case "ja":
		return "ja"
	case "zh":
		return "zh"
	default:
		return "en"
	}
}

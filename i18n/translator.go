package i18n

import (
	"sort"
	"strings"
)

// Translator retrieves localized messages for error codes.
// data provides optional metadata to embed in the message (for example,
// "shape" or "callable").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "registration":
			msg = "登録が不正です"
		case "unknown_shape":
			msg = "未登録のシェイプです"
		case "unbound_parameter":
			msg = "パラメータが登録されていません"
		case "duplicate_key":
			msg = "キーが重複しています"
		case "parse_error":
			msg = "解析エラー"
		case "truncated":
			msg = "打ち切られました"
		}
	default: // "en"
		switch code {
		case "registration":
			msg = "invalid registration"
		case "unknown_shape":
			msg = "unknown shape"
		case "unbound_parameter":
			msg = "no parameters registered"
		case "duplicate_key":
			msg = "duplicate key"
		case "parse_error":
			msg = "parse error"
		case "truncated":
			msg = "truncated"
		}
	}
	if msg == "" {
		msg = code
	}
	return withData(msg, data)
}

// withData appends data as "k=v" pairs in key order.
func withData(msg string, data map[string]string) string {
	if len(data) == 0 {
		return msg
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b := &strings.Builder{}
	b.WriteString(msg)
	b.WriteString(" (")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(data[k])
	}
	b.WriteByte(')')
	return b.String()
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }

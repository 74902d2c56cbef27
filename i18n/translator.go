package i18n

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional values substituted into {name} placeholders (for
// example "value", "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var catalog = map[string]map[string]string{
	"en": {
		"coercion_failed":     "value {value} is not convertible into any of {types}",
		"disallowed_type":     "value {value} cannot be of type {type}",
		"invalid_type":        "value {value} is not an instance of any of {types}",
		"invalid_enum":        "value {value} not in options {options}",
		"arity_mismatch":      "expected exactly {expected} items, received {got}",
		"structural_mismatch": "expected {expected}, received {value} of type {type}",
		"shape_mismatch":      "array of shape {got} does not match shape {expected}",
		"read_only":           "attribute is read-only",
		"null_not_allowed":    "none is not allowed",
		"out_of_range":        "expected a {constraint} number, got {value}",
		"no_alternative":      "value {value} not convertible using {alternatives}",
		"rejected":            "value {value} rejected: {reason}",
		"invalid_spec":        "invalid specification: {reason}",
		"required":            "required parameter {key} is not set",
		"parse_error":         "parse error: {reason}",
		"duplicate_key":       "duplicate key {key}",
	},
	"ja": {
		"coercion_failed":     "値 {value} は {types} のいずれにも変換できません",
		"disallowed_type":     "値 {value} は型 {type} であってはなりません",
		"invalid_type":        "値 {value} は {types} のいずれのインスタンスでもありません",
		"invalid_enum":        "値 {value} は選択肢 {options} に含まれていません",
		"arity_mismatch":      "要素数は {expected} でなければなりません (実際: {got})",
		"structural_mismatch": "{expected} が必要ですが、型 {type} の {value} を受け取りました",
		"shape_mismatch":      "配列の形状 {got} が {expected} と一致しません",
		"read_only":           "読み取り専用の属性です",
		"null_not_allowed":    "none は許可されていません",
		"out_of_range":        "{constraint} の数値が必要です (実際: {value})",
		"no_alternative":      "値 {value} は {alternatives} のいずれでも変換できません",
		"rejected":            "値 {value} は拒否されました: {reason}",
		"invalid_spec":        "不正な仕様です: {reason}",
		"required":            "必須パラメータ {key} が設定されていません",
		"parse_error":         "解析エラー: {reason}",
		"duplicate_key":       "キー {key} が重複しています",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := catalog[t.lang][code]
	if !ok {
		return code
	}
	return fill(tmpl, data)
}

// fill substitutes {name} placeholders. Unknown placeholders are kept as-is.
func fill(tmpl string, data map[string]string) string {
	if len(data) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language. Any BCP 47 tag is
// accepted ("ja", "ja-JP", "en-GB"); tags that match neither English nor
// Japanese fall back to English.
func SetLanguage(tag string) {
	lang := "en"
	if t, err := language.Parse(tag); err == nil {
		_, idx, conf := matcher.Match(t)
		if conf != language.No && supported[idx] == language.Japanese {
			lang = "ja"
		}
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}

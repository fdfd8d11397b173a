// Package i18n translates format strings.
package i18n

import "fmt"

// Formatter renders a format string with parameters.
type Formatter func(format string, params []any) string

// Translator translates a format string.
type Translator interface {
	Translate(format string, params []any, context string) string
}

// FormatTranslator delegates translation to a Formatter.
type FormatTranslator struct {
	formatter Formatter
}

// NewFormatTranslator creates a translator. A nil formatter uses Sprintf.
func NewFormatTranslator(formatter Formatter) *FormatTranslator {
	if formatter == nil {
		formatter = Sprintf
	}

	return &FormatTranslator{formatter: formatter}
}

// Translate renders format with params. The context is currently unused by
// the formatter.
func (t *FormatTranslator) Translate(format string, params []any, context string) string {
	return t.formatter(format, params)
}

// Sprintf formats with fmt.Sprintf.
func Sprintf(format string, params []any) string {
	if len(params) == 0 {
		return format
	}

	return fmt.Sprintf(format, params...)
}

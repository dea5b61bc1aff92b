package output

import (
	"bytes"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// DefaultIndent is the number of spaces used when re-indenting JSON.
const DefaultIndent = 4

// JSONProcessor re-indents JSON bodies with sorted keys. Bodies that are
// not valid JSON pass through unchanged.
type JSONProcessor struct {
	opts *pretty.Options
}

func NewJSONProcessor(indent int) *JSONProcessor {
	return &JSONProcessor{
		opts: &pretty.Options{
			Indent:   string(bytes.Repeat([]byte(" "), indent)),
			SortKeys: true,
		},
	}
}

func (p *JSONProcessor) Enabled() bool {
	return true
}

func (p *JSONProcessor) ProcessBody(content []byte) []byte {
	if !gjson.ValidBytes(content) {
		return content
	}
	return bytes.TrimRight(pretty.PrettyOptions(content, p.opts), "\n")
}

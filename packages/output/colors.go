package output

import (
	"fmt"
	"sort"

	"github.com/abdul-hamid-achik/jsonrpcake/packages/core/env"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// DefaultStyle is used when no style, or an unknown one, is requested.
const DefaultStyle = "solarized"

// palette assigns a 256-color code and a basic ANSI code to each JSON
// token class.
type palette struct {
	key, str, num, boolean, null [2]int
}

var styles = map[string]palette{
	"solarized": {key: [2]int{33, 34}, str: [2]int{37, 36}, num: [2]int{125, 35}, boolean: [2]int{166, 33}, null: [2]int{136, 33}},
	"monokai":   {key: [2]int{197, 91}, str: [2]int{186, 93}, num: [2]int{141, 95}, boolean: [2]int{81, 96}, null: [2]int{81, 96}},
	"fruity":    {key: [2]int{33, 94}, str: [2]int{32, 32}, num: [2]int{201, 95}, boolean: [2]int{208, 91}, null: [2]int{208, 91}},
	"native":    {key: [2]int{110, 94}, str: [2]int{179, 93}, num: [2]int{74, 36}, boolean: [2]int{107, 92}, null: [2]int{107, 92}},
	"default":   {key: [2]int{28, 32}, str: [2]int{124, 31}, num: [2]int{242, 90}, boolean: [2]int{28, 32}, null: [2]int{28, 32}},
	"bw":        {key: [2]int{15, 1}, str: [2]int{7, 0}, num: [2]int{7, 0}, boolean: [2]int{15, 1}, null: [2]int{15, 1}},
}

// Styles returns the available style names, sorted.
func Styles() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsStyle reports whether name is an available style.
func IsStyle(name string) bool {
	_, ok := styles[name]
	return ok
}

const reset = "\x1b[0m"

func sgr(code int, depth int) [2]string {
	if depth == env.Colors256 {
		return [2]string{fmt.Sprintf("\x1b[38;5;%dm", code), reset}
	}
	return [2]string{fmt.Sprintf("\x1b[%dm", code), reset}
}

func (p palette) style(depth int) *pretty.Style {
	pick := func(codes [2]int) [2]string {
		if depth == env.Colors256 {
			return sgr(codes[0], depth)
		}
		return sgr(codes[1], depth)
	}
	return &pretty.Style{
		Key:    pick(p.key),
		String: pick(p.str),
		Number: pick(p.num),
		True:   pick(p.boolean),
		False:  pick(p.boolean),
		Null:   pick(p.null),
		Append: pretty.TerminalStyle.Append,
	}
}

// ColorProcessor applies JSON syntax highlighting. It is disabled when the
// environment has no colors.
type ColorProcessor struct {
	enabled bool
	style   *pretty.Style
}

func NewColorProcessor(e *env.Environment, styleName string) *ColorProcessor {
	if e.Colors == 0 {
		return &ColorProcessor{}
	}
	p, ok := styles[styleName]
	if !ok {
		p = styles[DefaultStyle]
	}
	return &ColorProcessor{enabled: true, style: p.style(e.Colors)}
}

func (p *ColorProcessor) Enabled() bool {
	return p.enabled
}

func (p *ColorProcessor) ProcessBody(content []byte) []byte {
	if !gjson.ValidBytes(content) {
		return content
	}
	return pretty.Color(content, p.style)
}

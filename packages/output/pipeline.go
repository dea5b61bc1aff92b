package output

import (
	"fmt"
	"sort"

	"github.com/abdul-hamid-achik/jsonrpcake/packages/core/env"
)

// Processor groups.
const (
	GroupFormat = "format"
	GroupColors = "colors"
)

// PrettyMap maps --pretty values to processor groups.
var PrettyMap = map[string][]string{
	"all":    {GroupFormat, GroupColors},
	"colors": {GroupColors},
	"format": {GroupFormat},
	"none":   {},
}

// PrettyChoices returns the accepted --pretty values, sorted.
func PrettyChoices() []string {
	choices := make([]string, 0, len(PrettyMap))
	for k := range PrettyMap {
		choices = append(choices, k)
	}
	sort.Strings(choices)
	return choices
}

// GroupsFor resolves a --pretty value. An empty value selects "all" when
// stdout is a terminal and "none" otherwise.
func GroupsFor(pretty string, e *env.Environment) ([]string, error) {
	if pretty == "" {
		if e.StdoutIsTTY {
			pretty = "all"
		} else {
			pretty = "none"
		}
	}
	groups, ok := PrettyMap[pretty]
	if !ok {
		return nil, fmt.Errorf("invalid choice %q for --pretty (choose from %v)", pretty, PrettyChoices())
	}
	return groups, nil
}

// Processor transforms a response body.
type Processor interface {
	Enabled() bool
	ProcessBody(content []byte) []byte
}

// Options configures the processors of a Pipeline.
type Options struct {
	Style  string
	Indent int
}

type processorFactory func(e *env.Environment, opts Options) Processor

var installedProcessors = map[string][]processorFactory{
	GroupFormat: {
		func(_ *env.Environment, opts Options) Processor { return NewJSONProcessor(opts.Indent) },
	},
	GroupColors: {
		func(e *env.Environment, opts Options) Processor { return NewColorProcessor(e, opts.Style) },
	},
}

// Pipeline runs the enabled processors of the requested groups in order.
type Pipeline struct {
	processors []Processor
}

// NewPipeline builds a pipeline for groups. An unknown group name is an
// error.
func NewPipeline(e *env.Environment, groups []string, opts Options) (*Pipeline, error) {
	if opts.Style == "" {
		opts.Style = DefaultStyle
	}
	if opts.Indent <= 0 {
		opts.Indent = DefaultIndent
	}

	p := &Pipeline{}
	for _, group := range groups {
		factories, ok := installedProcessors[group]
		if !ok {
			return nil, fmt.Errorf("unknown output processor group %q", group)
		}
		for _, factory := range factories {
			if proc := factory(e, opts); proc.Enabled() {
				p.processors = append(p.processors, proc)
			}
		}
	}
	return p, nil
}

// Len returns the number of enabled processors.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

func (p *Pipeline) ProcessBody(content []byte) []byte {
	for _, proc := range p.processors {
		content = proc.ProcessBody(content)
	}
	return content
}

package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// argSegment is one command-line argument, or a flag with its separate
// value argument.
type argSegment struct {
	flag string
	args []string
}

// resetNoOptions drops every --no-NAME argument together with the earlier
// occurrences of --NAME, so NAME falls back to its default. This lets a
// command line undo options added by the config file's defaultOptions.
// An unknown --no-NAME is an error.
func resetNoOptions(flags *pflag.FlagSet, args []string) ([]string, error) {
	var (
		segments []argSegment
		unknown  []string
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			segments = append(segments, argSegment{args: args[i:]})
			break
		}

		if name, ok := strings.CutPrefix(arg, "--no-"); ok && flags.Lookup("no-"+name) == nil {
			f := flags.Lookup(name)
			if f == nil || strings.Contains(name, "=") {
				unknown = append(unknown, arg)
				continue
			}
			segments = slices.DeleteFunc(segments, func(s argSegment) bool {
				return s.flag == f.Name
			})
			continue
		}

		seg := argSegment{args: []string{arg}}
		if f, separateValue := lookupFlagArg(flags, arg); f != nil {
			seg.flag = f.Name
			if separateValue && i+1 < len(args) {
				i++
				seg.args = append(seg.args, args[i])
			}
		}
		segments = append(segments, seg)
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("unrecognized arguments: %s", strings.Join(unknown, " "))
	}

	out := make([]string, 0, len(args))
	for _, s := range segments {
		out = append(out, s.args...)
	}
	return out, nil
}

// lookupFlagArg returns the flag arg sets and whether its value is the
// following argument.
func lookupFlagArg(flags *pflag.FlagSet, arg string) (*pflag.Flag, bool) {
	switch {
	case strings.HasPrefix(arg, "--"):
		name, _, inline := strings.Cut(arg[2:], "=")
		f := flags.Lookup(name)
		if f == nil {
			return nil, false
		}
		return f, !inline && f.NoOptDefVal == ""
	case strings.HasPrefix(arg, "-") && len(arg) > 1:
		f := flags.ShorthandLookup(arg[1:2])
		if f == nil {
			return nil, false
		}
		return f, len(arg) == 2 && f.NoOptDefVal == ""
	}
	return nil, false
}

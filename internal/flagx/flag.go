// Package flagx holds small helpers for packages that parse only their own
// subset of the command line.
package flagx

import (
	"flag"
	"strconv"
	"strings"
	"time"
)

// FilterArgs keeps only the flags named in allowedFlags, together with their
// values. Both "-k value" and "-k=value" forms are recognised; a following
// token that starts with "-" is never taken as a value.
//
//	FilterArgs([]string{"-d", "x.db", "-z", "1"}, []string{"-d"}) // ["-d" "x.db"]
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath returns the JSON config file named by -c or -config in args, or
// "" when neither is given. When both appear the last one wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}

// Seconds is a flag.Value holding a duration given as whole seconds.
type Seconds struct {
	D *time.Duration
}

func (s Seconds) String() string {
	if s.D == nil {
		return "0"
	}
	return strconv.FormatInt(int64(s.D.Seconds()), 10)
}

func (s Seconds) Set(v string) error {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return err
	}
	*s.D = time.Duration(n) * time.Second
	return nil
}

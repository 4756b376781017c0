// Package flagx pre-parses the few flags that decide where configuration is
// read from, before the full flag set is built.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps only the allowed flags from args, together with their
// values. Both "-c file" and "-c=file" forms are recognized; a following
// token that starts with '-' is never taken as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// Sources names the files configuration is loaded from.
type Sources struct {
	// ConfigPath is a JSON or YAML file given with -c or -config.
	ConfigPath string
	// EnvPath is a dotenv file given with -env.
	EnvPath string
}

// SourceFlags extracts Sources from args (normally os.Args[1:]); every other
// flag is ignored. The last occurrence of a flag wins.
func SourceFlags(args []string) Sources {
	var s Sources

	fs := flag.NewFlagSet("sources", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&s.ConfigPath, "config", "", "Path to config file")
	fs.StringVar(&s.ConfigPath, "c", "", "Path to config file (short)")
	fs.StringVar(&s.EnvPath, "env", "", "Path to .env file")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config", "-env", "--env"}))

	return s
}

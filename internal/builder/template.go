package builder

import "regexp"

var templateToken = regexp.MustCompile(`\$#([A-Za-z_][A-Za-z0-9_]*)#`)

// expand substitutes $#NAME# tokens in manifest-supplied arguments with the
// matching toolchain-environment value. Unknown tokens pass through
// verbatim; templating is never an error. Fixed pipeline-generated
// arguments are never expanded.
func expand(args []string, env map[string]string) []string {
	if len(args) == 0 {
		return nil
	}
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = templateToken.ReplaceAllStringFunc(arg, func(token string) string {
			name := token[2 : len(token)-1]
			if value, ok := env[name]; ok {
				return value
			}
			return token
		})
	}
	return out
}

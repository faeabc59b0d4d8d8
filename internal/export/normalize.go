package export

import (
	"regexp"
	"strings"
)

var windowsDrive = regexp.MustCompile(`^([A-Za-z]):\\`)

// NormalizeOutputDir rewrites a Windows drive path into its WSL mount form,
// e.g. `C:\Users\Name\Videos` becomes `/mnt/c/Users/Name/Videos`. Any other
// path is returned unchanged. The filesystem is not consulted.
func NormalizeOutputDir(p string) string {
	m := windowsDrive.FindStringSubmatch(p)
	if m == nil {
		return p
	}
	rest := strings.ReplaceAll(p[len(m[0]):], `\`, "/")
	return "/mnt/" + strings.ToLower(m[1]) + "/" + rest
}

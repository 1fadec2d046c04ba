package pip

import "strings"

// NormalizePackageName strips a bracketed extras suffix from a package
// specifier: "name[extra1,extra2]" becomes "name". Everything from the first
// "[" onward is dropped, so malformed suffixes such as "name[[]]" or an
// unterminated "name[" also yield "name".
func NormalizePackageName(spec string) string {
	if idx := strings.IndexByte(spec, '['); idx >= 0 {
		return spec[:idx]
	}
	return spec
}

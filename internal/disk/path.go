package disk

import "strings"

// namespaces are the path schemes the provider understands. A path that
// already names one is passed through untouched.
var namespaces = []string{"disk:", "app:", "trash:"}

// NormalizePath turns a caller path into the provider's canonical form.
// Every operation in this package, including both transfer-link requests,
// applies this one rule:
//
//	"folder/file.txt"      -> "disk:/folder/file.txt"
//	"/folder/file.txt"     -> "disk:/folder/file.txt"
//	"" or "/"              -> "disk:/"
//	"disk:/folder"         -> "disk:/folder"
//	"app:/x"               -> "app:/x"
func NormalizePath(p string) string {
	for _, ns := range namespaces {
		if strings.HasPrefix(p, ns) {
			return p
		}
	}

	return "disk:/" + strings.TrimLeft(p, "/")
}

// BaseName returns the last segment of a provider path, which is the
// resource name the provider reports in metadata.
func BaseName(p string) string {
	p = strings.TrimRight(NormalizePath(p), "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}

	return ""
}

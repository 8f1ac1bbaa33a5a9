// Package ppath converts between portable (slash-separated) paths and host paths.
//
// All lookup structures store portable paths. On Windows a drive path such as
// C:\foo\bar becomes /C:/foo/bar and a UNC path \\server\share becomes
// /unc/server/share.
package ppath

import (
	"path"
	"regexp"
	"runtime"
	"strings"
)

// Windows reports whether native paths use the Windows form.
var Windows = runtime.GOOS == "windows"

var (
	windowsPathRegExp     = regexp.MustCompile(`^([a-zA-Z]:.*)$`)
	uncWindowsPathRegExp  = regexp.MustCompile(`^\\\\(\.\\)?(.*)$`)
	portablePathRegExp    = regexp.MustCompile(`^/([a-zA-Z]:.*)$`)
	uncPortablePathRegExp = regexp.MustCompile(`^/unc/(\.dot/)?(.*)$`)
)

// ToPortable converts a host path to its portable form.
func ToPortable(p string) string {
	if !Windows {
		return p
	}
	return windowsToPortable(p)
}

// FromPortable converts a portable path to the host form.
func FromPortable(p string) string {
	if !Windows {
		return p
	}
	return portableToWindows(p)
}

func windowsToPortable(p string) string {
	if m := windowsPathRegExp.FindStringSubmatch(p); m != nil {
		p = "/" + m[1]
	} else if m := uncWindowsPathRegExp.FindStringSubmatch(p); m != nil {
		if m[1] != "" {
			p = "/unc/.dot/" + m[2]
		} else {
			p = "/unc/" + m[2]
		}
	}
	return strings.ReplaceAll(p, `\`, "/")
}

func portableToWindows(p string) string {
	if m := portablePathRegExp.FindStringSubmatch(p); m != nil {
		p = m[1]
	} else if m := uncPortablePathRegExp.FindStringSubmatch(p); m != nil {
		if m[1] != "" {
			p = `\\.\` + m[2]
		} else {
			p = `\\` + m[2]
		}
	} else {
		return p
	}
	return strings.ReplaceAll(p, "/", `\`)
}

// IsAbsolute reports whether a portable path is absolute.
func IsAbsolute(p string) bool {
	return strings.HasPrefix(p, "/")
}

// Contains reports whether p equals dir or lies below it. Both are portable.
func Contains(dir, p string) bool {
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" {
		return IsAbsolute(p)
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}

// Relative returns the portable path leading from the directory from to to.
// Both must be absolute.
func Relative(from, to string) string {
	from, to = path.Clean(from), path.Clean(to)
	if from == to {
		return ""
	}

	fromParts := split(from)
	toParts := split(to)

	common := 0
	for common < len(fromParts) && common < len(toParts) && fromParts[common] == toParts[common] {
		common++
	}

	parts := make([]string, 0, len(fromParts)-common+len(toParts)-common)
	for range fromParts[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, toParts[common:]...)
	return strings.Join(parts, "/")
}

func split(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Join joins portable segments and normalizes the result.
// A trailing slash on the last segment is kept.
func Join(elem ...string) string {
	joined := path.Join(elem...)
	if len(elem) > 0 && strings.HasSuffix(elem[len(elem)-1], "/") && joined != "/" {
		joined += "/"
	}
	return joined
}

// Normalize cleans a portable path, keeping a trailing slash.
func Normalize(p string) string {
	if p == "" {
		return "."
	}
	return Join(p)
}

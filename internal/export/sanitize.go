package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeName drops control characters and replaces characters that are
// not allowed in Windows file names, since outputs often land on a mounted
// Windows drive.
func SanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if isReservedNameRune(r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func isReservedNameRune(r rune) bool {
	switch r {
	case '<', '>', ':', '"', '|', '?', '*':
		return true
	default:
		return false
	}
}

// OutputFileName is "processed_" plus the base of the display name, or of
// the source path when the display name is empty.
func OutputFileName(displayName, sourcePath string) string {
	name := lastSegment(displayName)
	if name == "" {
		name = lastSegment(sourcePath)
	}
	name = SanitizeName(name)
	if name == "" || name == "." || name == ".." {
		name = "clip"
	}
	return outputPrefix + name
}

// ValidateTag accepts a tag only when it names a single directory directly
// below the output directory.
func ValidateTag(tag string) error {
	if strings.TrimSpace(tag) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTag)
	}
	if tag == "." || tag == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	if strings.ContainsAny(tag, `/\`) || strings.ContainsRune(tag, 0) {
		return fmt.Errorf("%w: %q must be a single folder name", ErrInvalidTag, tag)
	}
	return nil
}

// ValidateOutputDir checks a normalized output directory before any work
// starts. The directory itself is created on demand.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return ErrMissingOutputPath
	}
	if strings.ContainsRune(dir, 0) {
		return fmt.Errorf("output path contains a NUL byte")
	}
	return nil
}

func lastSegment(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return filepath.Base(filepath.FromSlash(p))
}

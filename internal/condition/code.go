package condition

import (
	"path"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
)

// CodeCondition decides whether a changed file counts as source code.
type CodeCondition interface {
	Name() string
	Accepts(file domain.FileChange) bool
}

// CodeConditions is an AND-composition of code conditions.
type CodeConditions []CodeCondition

// Accepts reports whether every condition accepts the file. An empty set accepts everything.
func (cs CodeConditions) Accepts(file domain.FileChange) bool {
	for _, c := range cs {
		if !c.Accepts(file) {
			return false
		}
	}
	return true
}

// Names returns the configured condition names in order.
func (cs CodeConditions) Names() []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name()
	}
	return names
}

// Naive treats every file as source code.
type Naive struct{}

func (Naive) Name() string { return NameNaive }

func (Naive) Accepts(domain.FileChange) bool { return true }

// PostfixExclude rejects files whose path ends with one of the postfixes.
// Matching is case-sensitive.
type PostfixExclude struct {
	Postfixes []string
}

func (PostfixExclude) Name() string { return NamePostfixExclude }

func (p PostfixExclude) Accepts(file domain.FileChange) bool {
	for _, postfix := range p.Postfixes {
		if postfix != "" && strings.HasSuffix(file.Path, postfix) {
			return false
		}
	}
	return true
}

// DirExclude rejects files located under one of the directories. A directory
// matches whole path segments only, so "tests" does not match "tests_helper.py".
type DirExclude struct {
	Dirs []string
}

func (DirExclude) Name() string { return NameDirExclude }

func (d DirExclude) Accepts(file domain.FileChange) bool {
	dirs := splitPath(path.Dir(file.Path))
	for _, dir := range d.Dirs {
		if containsSegments(dirs, splitPath(dir)) {
			return false
		}
	}
	return true
}

// VendorExclude rejects vendored and third-party files, as classified by enry.
type VendorExclude struct{}

func (VendorExclude) Name() string { return NameVendorExclude }

func (VendorExclude) Accepts(file domain.FileChange) bool {
	return !enry.IsVendor(file.Path)
}

func splitPath(p string) []string {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" && s != "." {
			segments = append(segments, s)
		}
	}
	return segments
}

// containsSegments reports whether needle occurs as a contiguous run in haystack.
func containsSegments(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

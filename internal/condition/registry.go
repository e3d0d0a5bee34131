package condition

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/naka-gawa/evolution-metrics/internal/errors"
)

// Condition names as used in configuration.
const (
	NameMergeExclude   = "merge_exclude"
	NameEmptyExclude   = "empty_exclude"
	NameMasterInclude  = "master_include"
	NameNaive          = "naive"
	NamePostfixExclude = "postfix_exclude"
	NameDirExclude     = "dir_exclude"
	NameVendorExclude  = "vendor_exclude"
)

// DefaultBranch is the primary branch name used by master_include when none is configured.
const DefaultBranch = "master"

// Options carries the parameters of parameterised conditions.
type Options struct {
	Branch           string
	ExcludePostfixes []string
	ExcludeDirs      []string
}

var commitConstructors = map[string]func(Options) CommitCondition{
	NameMergeExclude: func(Options) CommitCondition { return MergeExclude{} },
	NameEmptyExclude: func(Options) CommitCondition { return EmptyExclude{} },
	NameMasterInclude: func(o Options) CommitCondition {
		branch := o.Branch
		if branch == "" {
			branch = DefaultBranch
		}
		return MasterInclude{Branch: branch}
	},
}

var codeConstructors = map[string]func(Options) CodeCondition{
	NameNaive:          func(Options) CodeCondition { return Naive{} },
	NamePostfixExclude: func(o Options) CodeCondition { return PostfixExclude{Postfixes: o.ExcludePostfixes} },
	NameDirExclude:     func(o Options) CodeCondition { return DirExclude{Dirs: o.ExcludeDirs} },
	NameVendorExclude:  func(Options) CodeCondition { return VendorExclude{} },
}

// NewCommitConditions builds the commit conditions named, in order.
// Unknown names are rejected.
func NewCommitConditions(names []string, opts Options) (CommitConditions, error) {
	conds := make(CommitConditions, 0, len(names))
	for _, name := range names {
		ctor, ok := commitConstructors[name]
		if !ok {
			return nil, unknown("commit-conditions", name, CommitConditionNames())
		}
		conds = append(conds, ctor(opts))
	}
	return conds, nil
}

// NewCodeConditions builds the code conditions named, in order.
// Unknown names are rejected, as are exclusion conditions without parameters.
func NewCodeConditions(names []string, opts Options) (CodeConditions, error) {
	conds := make(CodeConditions, 0, len(names))
	for _, name := range names {
		ctor, ok := codeConstructors[name]
		if !ok {
			return nil, unknown("code-conditions", name, CodeConditionNames())
		}
		switch {
		case name == NamePostfixExclude && len(opts.ExcludePostfixes) == 0:
			return nil, apperrors.NewInvalidConfigError("exclude-postfixes", "postfix_exclude needs at least one postfix")
		case name == NameDirExclude && len(opts.ExcludeDirs) == 0:
			return nil, apperrors.NewInvalidConfigError("exclude-dirs", "dir_exclude needs at least one directory")
		}
		conds = append(conds, ctor(opts))
	}
	return conds, nil
}

// CommitConditionNames lists the registered commit condition names.
func CommitConditionNames() []string {
	return sortedKeys(commitConstructors)
}

// CodeConditionNames lists the registered code condition names.
func CodeConditionNames() []string {
	return sortedKeys(codeConstructors)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func unknown(field, name string, known []string) error {
	return apperrors.NewInvalidConfigError(field, fmt.Sprintf("unknown condition %q (known: %s)", name, strings.Join(known, ", ")))
}

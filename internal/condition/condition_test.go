package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
	apperrors "github.com/naka-gawa/evolution-metrics/internal/errors"
)

func file(path string) domain.FileChange {
	return domain.FileChange{Path: path, Added: 1}
}

func TestCommitConditions(t *testing.T) {
	testCases := []struct {
		name      string
		condition CommitCondition
		commit    domain.Commit
		expected  bool
	}{
		{name: "merge exclude rejects merges", condition: MergeExclude{}, commit: domain.Commit{Parents: 2}, expected: false},
		{name: "merge exclude accepts regular commits", condition: MergeExclude{}, commit: domain.Commit{Parents: 1}, expected: true},
		{name: "merge exclude accepts root commits", condition: MergeExclude{}, commit: domain.Commit{Parents: 0}, expected: true},
		{name: "empty exclude rejects empty commits", condition: EmptyExclude{}, commit: domain.Commit{}, expected: false},
		{name: "empty exclude accepts commits with files", condition: EmptyExclude{}, commit: domain.Commit{Files: []domain.FileChange{file("a.go")}}, expected: true},
		{name: "master include plain name", condition: MasterInclude{Branch: "master"}, commit: domain.Commit{Branches: []string{"dev", "master"}}, expected: true},
		{name: "master include full ref", condition: MasterInclude{Branch: "master"}, commit: domain.Commit{Branches: []string{"refs/heads/master"}}, expected: true},
		{name: "master include remote ref", condition: MasterInclude{Branch: "main"}, commit: domain.Commit{Branches: []string{"refs/remotes/origin/main"}}, expected: true},
		{name: "master include HEAD decoration", condition: MasterInclude{Branch: "main"}, commit: domain.Commit{Branches: []string{"HEAD -> refs/heads/main"}}, expected: true},
		{name: "master include rejects other branches", condition: MasterInclude{Branch: "master"}, commit: domain.Commit{Branches: []string{"refs/heads/master-old"}}, expected: false},
		{name: "master include rejects commits without refs", condition: MasterInclude{Branch: "master"}, commit: domain.Commit{}, expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.condition.Accepts(tc.commit))
		})
	}
}

func TestCommitConditions_AndComposition(t *testing.T) {
	merge := domain.Commit{Parents: 2, Files: []domain.FileChange{file("a.go")}}
	empty := domain.Commit{Parents: 1}
	regular := domain.Commit{Parents: 1, Files: []domain.FileChange{file("a.go")}}

	var none CommitConditions
	assert.True(t, none.Accepts(merge))
	assert.True(t, none.Accepts(empty))

	both := CommitConditions{MergeExclude{}, EmptyExclude{}}
	assert.False(t, both.Accepts(merge))
	assert.False(t, both.Accepts(empty))
	assert.True(t, both.Accepts(regular))
	assert.Equal(t, []string{NameMergeExclude, NameEmptyExclude}, both.Names())
}

func TestMergeExclude_NeverKeepsMultiParentCommits(t *testing.T) {
	cond := MergeExclude{}
	for parents := 0; parents < 6; parents++ {
		commit := domain.Commit{Parents: parents}
		if cond.Accepts(commit) {
			assert.LessOrEqual(t, commit.Parents, 1)
		}
	}
}

func TestCodeConditions(t *testing.T) {
	testCases := []struct {
		name      string
		condition CodeCondition
		path      string
		expected  bool
	}{
		{name: "naive accepts docs", condition: Naive{}, path: "README.md", expected: true},
		{name: "postfix rejects markdown", condition: PostfixExclude{Postfixes: []string{".md"}}, path: "docs/README.md", expected: false},
		{name: "postfix accepts python", condition: PostfixExclude{Postfixes: []string{".md"}}, path: "src/a.py", expected: true},
		{name: "postfix is case-sensitive", condition: PostfixExclude{Postfixes: []string{".md"}}, path: "README.MD", expected: true},
		{name: "dir rejects top-level directory", condition: DirExclude{Dirs: []string{"tests"}}, path: "tests/unit/foo.py", expected: false},
		{name: "dir rejects nested directory", condition: DirExclude{Dirs: []string{"tests"}}, path: "pkg/tests/foo.py", expected: false},
		{name: "dir is not a substring match", condition: DirExclude{Dirs: []string{"tests"}}, path: "src/tests_helper.py", expected: true},
		{name: "dir ignores the file name", condition: DirExclude{Dirs: []string{"tests"}}, path: "src/tests", expected: true},
		{name: "dir with multiple segments", condition: DirExclude{Dirs: []string{"third_party/lib/"}}, path: "a/third_party/lib/x.c", expected: false},
		{name: "dir with multiple segments needs them contiguous", condition: DirExclude{Dirs: []string{"third_party/lib"}}, path: "third_party/x/lib/x.c", expected: true},
		{name: "vendor rejects vendored code", condition: VendorExclude{}, path: "vendor/github.com/x/y.go", expected: false},
		{name: "vendor rejects node modules", condition: VendorExclude{}, path: "node_modules/left-pad/index.js", expected: false},
		{name: "vendor accepts sources", condition: VendorExclude{}, path: "internal/metric/metric.go", expected: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.condition.Accepts(file(tc.path)))
		})
	}
}

func TestCodeConditions_AndComposition(t *testing.T) {
	conds := CodeConditions{PostfixExclude{Postfixes: []string{".md"}}, DirExclude{Dirs: []string{"docs"}}}
	assert.False(t, conds.Accepts(file("README.md")))
	assert.False(t, conds.Accepts(file("docs/conf.py")))
	assert.True(t, conds.Accepts(file("src/a.py")))
	assert.True(t, CodeConditions{}.Accepts(file("README.md")))
}

func TestRegistry(t *testing.T) {
	commitConds, err := NewCommitConditions([]string{NameMergeExclude, NameMasterInclude}, Options{Branch: "main"})
	require.NoError(t, err)
	require.Len(t, commitConds, 2)
	assert.Equal(t, MasterInclude{Branch: "main"}, commitConds[1])

	defaulted, err := NewCommitConditions([]string{NameMasterInclude}, Options{})
	require.NoError(t, err)
	assert.Equal(t, MasterInclude{Branch: DefaultBranch}, defaulted[0])

	codeConds, err := NewCodeConditions([]string{NamePostfixExclude, NameDirExclude}, Options{
		ExcludePostfixes: []string{".md"},
		ExcludeDirs:      []string{"tests"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{NamePostfixExclude, NameDirExclude}, codeConds.Names())

	_, err = NewCommitConditions([]string{"bogus"}, Options{})
	assert.True(t, apperrors.IsInvalidConfig(err))
	assert.Contains(t, err.Error(), "merge_exclude")

	_, err = NewCodeConditions([]string{NamePostfixExclude}, Options{})
	assert.True(t, apperrors.IsInvalidConfig(err))

	_, err = NewCodeConditions([]string{"bogus"}, Options{})
	assert.True(t, apperrors.IsInvalidConfig(err))
}

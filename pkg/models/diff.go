package models

// DirectoryPair is the source and destination roots of a mirror
type DirectoryPair struct {
	Source string
	Dest   string
}

// LevelDiff is the result of comparing one directory level of a pair.
// All name lists are sorted.
type LevelDiff struct {
	// Path is the level's path relative to the pair roots ("" or "." for the root)
	Path string

	// OnlyInSource holds names present in the source only
	OnlyInSource []string

	// OnlyInDest holds names present in the destination only
	OnlyInDest []string

	// OnlyInDestDirs is the subset of OnlyInDest that are directories
	OnlyInDestDirs []string

	// CommonFiles holds names that are regular files on both sides
	CommonFiles []string

	// CommonDirs holds names that are directories on both sides
	CommonDirs []string

	// TypeMismatches holds names that are a file on one side and a
	// directory on the other. They are left untouched.
	TypeMismatches []string
}

// Empty reports whether the level has nothing to do besides recursion
func (d *LevelDiff) Empty() bool {
	return len(d.OnlyInSource) == 0 && len(d.OnlyInDest) == 0
}

// MutationPlan is the ordered set of actions derived for one level
type MutationPlan struct {
	Updates   []string
	Deletions []string
	Creations []string
}

// NewMutationPlan builds the plan for a level from its diff and the
// common files whose content differs.
func NewMutationPlan(diff *LevelDiff, mismatches []string) *MutationPlan {
	return &MutationPlan{
		Updates:   mismatches,
		Deletions: diff.OnlyInDest,
		Creations: diff.OnlyInSource,
	}
}

// Len returns the number of planned actions
func (p *MutationPlan) Len() int {
	return len(p.Updates) + len(p.Deletions) + len(p.Creations)
}

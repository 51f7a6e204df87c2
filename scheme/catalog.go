package scheme

// Gap and overlap layouts of reads sequenced as a 10-base segment followed by a 20-base one.
var (
	gapSplit = Split{
		At:           20,
		Offsets:      []int{5, 6, 7},
		Bias:         -6,
		ScoreOffsets: [2]int{6, 7},
	}
	overlapSplit = Split{
		At:           20,
		Offsets:      []int{-3, -4, -5},
		Bias:         4,
		ScoreOffsets: [2]int{-4, -5},
	}
)

// Catalog returns definitions of the built-in schemes.
//
// Names follow the L<read length>w<window size>s<substitutions>e<indels> convention.
func Catalog() []Definition {
	return []Definition{
		{Name: "L4w4s0e0", ReadLength: 4, BlockSize: 4, Blocks: 1},
		{Name: "L16w16s0e0", ReadLength: 16, BlockSize: 16, Blocks: 1},
		{Name: "L24w12s1e0", ReadLength: 24, BlockSize: 4, Blocks: 4, Substitutions: 1},
		{Name: "L30w12s1e0", ReadLength: 30, BlockSize: 3, Blocks: 5, Substitutions: 1},
		{Name: "L32w16s1e0", ReadLength: 32, BlockSize: 4, Blocks: 5, Substitutions: 1},
		{Name: "L24w12s2e0", ReadLength: 24, BlockSize: 4, Blocks: 5, Substitutions: 2},
		{Name: "L32w16s2e0", ReadLength: 32, BlockSize: 4, Blocks: 6, Substitutions: 2},
		{Name: "L24w12s0e1", ReadLength: 24, BlockSize: 4, Blocks: 4, Indels: 1},
		{Name: "L32w20s0e1", ReadLength: 32, BlockSize: 5, Blocks: 5, Indels: 1},
		{Name: "L30w12s1e1", ReadLength: 30, BlockSize: 4, Blocks: 5, Substitutions: 1, Indels: 1},
		{Name: "L32w16s1e1", ReadLength: 32, BlockSize: 4, Blocks: 6, Substitutions: 1, Indels: 1},
		{Name: "L32w12s2e1", ReadLength: 32, BlockSize: 4, Blocks: 6, Substitutions: 2, Indels: 1},
		{Name: "Split30w25s1Gap", ReadLength: 30, BlockSize: 5, Blocks: 6, Substitutions: 1, Split: &gapSplit},
		{Name: "Split30w20s2Gap", ReadLength: 30, BlockSize: 5, Blocks: 6, Substitutions: 2, Split: &gapSplit},
		{
			Name: "Split30w25s1Overlap", ReadLength: 30, BlockSize: 5, Blocks: 6, Substitutions: 1,
			Split: &overlapSplit,
		},
		{
			Name: "Split30w20s2Overlap", ReadLength: 30, BlockSize: 5, Blocks: 6, Substitutions: 2,
			Split: &overlapSplit,
		},
	}
}

package engine

import "strconv"

// ShuffleSeedMax is the upper bound of the fair draw used to key a shuffle.
const ShuffleSeedMax = 1_000_000_000

// shuffleDomain separates the shuffle stream from any other use of the key.
const shuffleDomain = "shuffle"

// Shuffler is the second stage of two-stage randomness: a fair draw
// becomes the seed, the seed deterministically drives a permutation.
type Shuffler interface {
	Shuffle(seed int64, n int, swap func(i, j int))
}

// FisherYates walks i from n-1 down to 1 and swaps i with
// j = floor(f * (i+1)), where f is the next float of the ByteGenerator keyed
// by the decimal string of the seed. The result is reproducible bit-for-bit.
type FisherYates struct{}

// Shuffle implements Shuffler.
func (FisherYates) Shuffle(seed int64, n int, swap func(i, j int)) {
	if n < 2 {
		return
	}
	bg := NewByteGenerator(strconv.FormatInt(seed, 10), shuffleDomain, 0, 0)
	for i := n - 1; i > 0; i-- {
		j := int(bg.NextFloat() * float64(i+1))
		if j > i {
			j = i
		}
		swap(i, j)
	}
}

// Permutation returns the shuffled order of 0..n-1.
func Permutation(s Shuffler, seed int64, n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	s.Shuffle(seed, n, func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	return perm
}

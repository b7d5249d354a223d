package engine

import (
	"reflect"
	"sort"
	"testing"
)

func TestFisherYatesGolden(t *testing.T) {
	tests := []struct {
		seed int64
		n    int
		want []int
	}{
		{42, 10, []int{4, 7, 9, 2, 6, 8, 1, 3, 0, 5}},
		{0, 5, []int{3, 4, 1, 0, 2}},
		{123456789, 25, []int{16, 4, 9, 17, 5, 3, 10, 20, 1, 11, 6, 8, 15, 24, 0, 23, 14, 19, 13, 7, 18, 12, 21, 22, 2}},
	}

	for _, tt := range tests {
		got := Permutation(FisherYates{}, tt.seed, tt.n)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Permutation(seed=%d, n=%d) = %v, want %v", tt.seed, tt.n, got, tt.want)
		}
	}
}

func TestPermutationIsPermutation(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		perm := Permutation(FisherYates{}, seed*7919, 312)
		sorted := append([]int(nil), perm...)
		sort.Ints(sorted)
		for i, v := range sorted {
			if v != i {
				t.Fatalf("seed %d: not a permutation, position %d holds %d", seed, i, v)
			}
		}
	}
}

func TestShuffleSmallInputs(t *testing.T) {
	calls := 0
	FisherYates{}.Shuffle(1, 1, func(i, j int) { calls++ })
	FisherYates{}.Shuffle(1, 0, func(i, j int) { calls++ })
	if calls != 0 {
		t.Errorf("expected no swaps for n < 2, got %d", calls)
	}
}

package index

import "math"

// GlobalTermWeight returns the corpus-level importance weight of a concept
// occurrence: log10(1 + N/df) over the corpus document count N and the
// term's document frequency df. Strictly positive and monotonically
// non-increasing in df, so terms spread across the whole corpus contribute
// less than rare ones.
func GlobalTermWeight(docCount uint64, docFreq int) float64 {
	if docFreq <= 0 {
		return 1
	}
	return math.Log10(1 + float64(docCount)/float64(docFreq))
}

// LocalTermWeight returns the weight of a single predication type from its
// occurrence count: log10(1 + freq). Non-decreasing, sub-linear, and
// strictly positive for freq >= 1, so a triple asserted many times counts
// more, but not proportionally more.
func LocalTermWeight(freq int) float64 {
	if freq < 1 {
		freq = 1
	}
	return math.Log10(1 + float64(freq))
}

package progress

import "math"

// DeriveCompletion reconstructs the checked-lesson set from a stored
// percentage: the first round(percent/100 * n) lesson IDs in flattened order.
// The derivation is deliberately lossy. Distinct checked subsets that map to
// the same percentage all reconstruct to the same earliest-N prefix; the
// backend stores only the number, never the set.
func DeriveCompletion(percent int, flattenedLessonIDs []string) map[string]struct{} {
	n := len(flattenedLessonIDs)
	completed := make(map[string]struct{})
	if n == 0 {
		return completed
	}

	count := int(math.Round(float64(percent) / 100 * float64(n)))
	if count < 0 {
		count = 0
	}
	if count > n {
		count = n
	}
	for _, id := range flattenedLessonIDs[:count] {
		completed[id] = struct{}{}
	}
	return completed
}

// PercentComplete computes the rounded completion percentage. A course with
// no lessons is 0% complete, never a division error.
func PercentComplete(completedCount, totalLessons int) int {
	if totalLessons <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completedCount) / float64(totalLessons)))
}

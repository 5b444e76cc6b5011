package bftw

// walkIterativeDeepening implements the IDS strategy of §4.5: each
// round widens the visited window by exactly one depth level,
// starting from the roots, until a round finds nothing past its
// frontier.
func walkIterativeDeepening(args *Args) error {
	return runDeepeningRounds(args, idsAdvance)
}

// idsAdvance computes IDS's next [min, max) window from the previous max.
func idsAdvance(prevMax int) (min, max int) {
	return prevMax, prevMax + 1
}

package bftw

// walkExponentialDeepening implements the EDS strategy of §4.5: like
// IDS, but each round's frontier doubles instead of incrementing by
// one, trading a little redundant shallow re-walking for far fewer
// rounds on deep trees.
func walkExponentialDeepening(args *Args) error {
	return runDeepeningRounds(args, edsAdvance)
}

// edsAdvance computes EDS's next [min, max) window from the previous max.
func edsAdvance(prevMax int) (min, max int) {
	if prevMax == 0 {
		return 0, 1
	}
	return prevMax, prevMax * 2
}

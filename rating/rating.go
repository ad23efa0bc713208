// Package rating implements the Elo arithmetic used for duel settlements.
package rating

import "math"

// DefaultK is the default K-factor applied to duel results.
const DefaultK = 32.0

// WinnerDelta returns the rating change for the winner of a duel.
// expectedOutcome is the pre-fight probability that the winner would win.
// ΔR = K × (S - E) with S = 1 for the winner.
func WinnerDelta(k, expectedOutcome float64) float64 {
	return k * (1 - expectedOutcome)
}

// LoserDelta returns the rating change for the loser of a duel. The loser's
// expected score is the complement of the winner's, and S = 0.
func LoserDelta(k, expectedOutcome float64) float64 {
	return k * (0 - (1 - expectedOutcome))
}

// ExpectedScore returns the probability that a player rated playerElo beats
// a player rated opponentElo under the standard Elo curve:
// E = 1 / (1 + 10^((opponent - player) / 400)).
func ExpectedScore(playerElo, opponentElo float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponentElo-playerElo)/400.0))
}

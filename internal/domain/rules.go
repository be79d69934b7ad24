package domain

import (
	"errors"
	"math/rand"
)

// ErrNoUnrevealedBomb reports a broken deck invariant: a live game must
// always hold exactly one unrevealed bomb. Clients cannot trigger this.
var ErrNoUnrevealedBomb = errors.New("no unrevealed bomb found when building next round pool")

// HandSizeForRound returns the wires dealt per player in the given
// round: 5, 4, 3, 2 for rounds 1-4, and 0 outside that range.
func HandSizeForRound(round int) int {
	if round < 1 || round > MaxRounds {
		return 0
	}
	return FirstRoundHandSize - (round - 1)
}

// MaxClaim is the upper bound for a claim submission: the number of
// defusing wires still hidden, i.e. player count minus those found.
func MaxClaim(g *GameState) int {
	return len(g.Hands) - len(g.FoundDefusing)
}

// ClaimInBounds reports whether a claim is acceptable right now.
func ClaimInBounds(g *GameState, claim int) bool {
	return claim >= 0 && claim <= MaxClaim(g)
}

// EvaluateWin checks the game-ending conditions and moves the state to
// finished when one holds. The good team wins as soon as every defusing
// wire has been found; that check runs first so it pre-empts round
// exhaustion. The bad team wins when the round counter passes the last
// round. Bomb reveals are resolved at the reveal site. Returns true if
// the game is (already or now) decided.
func EvaluateWin(g *GameState) bool {
	if g.Winner != "" {
		return true
	}
	if len(g.Hands) > 0 && len(g.FoundDefusing) >= len(g.Hands) {
		g.Winner = TeamGood
		g.WinReason = "All defusing wires have been revealed!"
		g.Phase = PhaseFinished
		return true
	}
	if g.Round > MaxRounds {
		g.Winner = TeamBad
		g.WinReason = "Round 4 ended without all defusing wires revealed!"
		g.Phase = PhaseFinished
		return true
	}
	return false
}

// NextRoundPool gathers the cards carried into the next round and
// returns them as a shuffled pool sized for the next deal: the
// unrevealed bomb, every defusing wire not yet found, and shuffled safe
// wires filling the remaining capacity. Wires revealed this round are
// discarded for good; found defusing wires never reappear.
func NextRoundPool(g *GameState, rng *rand.Rand) ([]int, error) {
	revealed := g.RevealedDeckIndices()
	found := g.FoundDefusingIndices()

	bombIndex := -1
	var defusing []int
	var safe []int
	for _, id := range g.PlayerIDs() {
		for _, deckIndex := range g.Hands[id] {
			if revealed[deckIndex] || found[deckIndex] {
				continue
			}
			switch g.WireDeck[deckIndex].Kind {
			case WireBomb:
				bombIndex = deckIndex
			case WireDefusing:
				defusing = append(defusing, deckIndex)
			case WireSafe:
				safe = append(safe, deckIndex)
			}
		}
	}
	if bombIndex < 0 {
		return nil, ErrNoUnrevealedBomb
	}

	capacity := HandSizeForRound(g.Round+1) * len(g.Hands)
	pool := make([]int, 0, capacity)
	pool = append(pool, bombIndex)
	pool = append(pool, defusing...)
	for _, deckIndex := range ShuffledInts(safe, rng) {
		if len(pool) >= capacity {
			break
		}
		pool = append(pool, deckIndex)
	}
	return ShuffledInts(pool, rng), nil
}

package domain

import "math/rand"

// RoleDistribution returns the number of good and bad roles for the
// given player count. Counts 4 and 7 each have two valid distributions,
// chosen uniformly at random.
func RoleDistribution(playerCount int, rng *rand.Rand) (good, bad int) {
	switch playerCount {
	case 4:
		if rng.Intn(2) == 0 {
			return 3, 1
		}
		return 2, 2
	case 5:
		return 3, 2
	case 6:
		return 4, 2
	case 7:
		if rng.Intn(2) == 0 {
			return 4, 3
		}
		return 5, 2
	case 8:
		return 5, 3
	}
	return 4, 2
}

// AssignRoles deals a shuffled good/bad role to each player.
func AssignRoles(players []PlayerID, rng *rand.Rand) map[PlayerID]Team {
	good, bad := RoleDistribution(len(players), rng)
	roles := make([]Team, 0, good+bad)
	for i := 0; i < good; i++ {
		roles = append(roles, TeamGood)
	}
	for i := 0; i < bad; i++ {
		roles = append(roles, TeamBad)
	}
	rng.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })

	out := make(map[PlayerID]Team, len(players))
	for i, id := range players {
		out[id] = roles[i]
	}
	return out
}

// NewWireDeck builds the shuffled wire deck for a player count N:
// N defusing wires, exactly one bomb, and 4N-1 safe wires.
func NewWireDeck(playerCount int, rng *rand.Rand) []WireCard {
	deck := make([]WireCard, 0, 5*playerCount)
	for i := 0; i < playerCount; i++ {
		deck = append(deck, WireCard{Kind: WireDefusing})
	}
	deck = append(deck, WireCard{Kind: WireBomb})
	for i := 0; i < 4*playerCount-1; i++ {
		deck = append(deck, WireCard{Kind: WireSafe})
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// ShuffledInts returns a fresh uniform permutation of the given ints.
func ShuffledInts(in []int, rng *rand.Rand) []int {
	out := make([]int, len(in))
	copy(out, in)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// ShuffledPlayers returns a fresh uniform permutation of the given ids.
func ShuffledPlayers(in []PlayerID, rng *rand.Rand) []PlayerID {
	out := make([]PlayerID, len(in))
	copy(out, in)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// DealHands assigns perPlayer consecutive indices from pool to each
// player in order. The pool must already be shuffled.
func DealHands(players []PlayerID, perPlayer int, pool []int) map[PlayerID][]int {
	hands := make(map[PlayerID][]int, len(players))
	next := 0
	for _, id := range players {
		hand := make([]int, 0, perPlayer)
		for i := 0; i < perPlayer && next < len(pool); i++ {
			hand = append(hand, pool[next])
			next++
		}
		hands[id] = hand
	}
	return hands
}

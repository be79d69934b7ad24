package domain

import (
	"math/rand"
	"testing"
)

func TestNewWireDeckComposition(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for players := MinPlayers; players <= MaxPlayers; players++ {
		deck := NewWireDeck(players, rng)
		if len(deck) != 5*players {
			t.Errorf("players=%d: deck size = %d, want %d", players, len(deck), 5*players)
		}
		counts := map[WireKind]int{}
		for _, card := range deck {
			counts[card.Kind]++
		}
		if counts[WireDefusing] != players {
			t.Errorf("players=%d: defusing = %d, want %d", players, counts[WireDefusing], players)
		}
		if counts[WireBomb] != 1 {
			t.Errorf("players=%d: bombs = %d, want 1", players, counts[WireBomb])
		}
		if counts[WireSafe] != 4*players-1 {
			t.Errorf("players=%d: safe = %d, want %d", players, counts[WireSafe], 4*players-1)
		}
	}
}

func TestRoleDistributionFixedCounts(t *testing.T) {
	tests := []struct {
		players int
		good    int
		bad     int
	}{
		{5, 3, 2},
		{6, 4, 2},
		{8, 5, 3},
	}
	rng := rand.New(rand.NewSource(2))
	for _, tt := range tests {
		good, bad := RoleDistribution(tt.players, rng)
		if good != tt.good || bad != tt.bad {
			t.Errorf("players=%d: got %d/%d, want %d/%d", tt.players, good, bad, tt.good, tt.bad)
		}
	}
}

func TestRoleDistributionVariants(t *testing.T) {
	tests := []struct {
		players  int
		variants map[[2]int]bool
	}{
		{4, map[[2]int]bool{{3, 1}: true, {2, 2}: true}},
		{7, map[[2]int]bool{{4, 3}: true, {5, 2}: true}},
	}
	rng := rand.New(rand.NewSource(3))
	for _, tt := range tests {
		seen := map[[2]int]bool{}
		for i := 0; i < 200; i++ {
			good, bad := RoleDistribution(tt.players, rng)
			pair := [2]int{good, bad}
			if !tt.variants[pair] {
				t.Fatalf("players=%d: unexpected distribution %v", tt.players, pair)
			}
			seen[pair] = true
		}
		if len(seen) != 2 {
			t.Errorf("players=%d: only saw %v over 200 draws", tt.players, seen)
		}
	}
}

func TestAssignRolesCoversAllPlayers(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	players := []PlayerID{0, 1, 2, 3, 4}
	roles := AssignRoles(players, rng)
	if len(roles) != len(players) {
		t.Fatalf("assigned %d roles, want %d", len(roles), len(players))
	}
	good, bad := 0, 0
	for _, id := range players {
		switch roles[id] {
		case TeamGood:
			good++
		case TeamBad:
			bad++
		default:
			t.Fatalf("player %d has no role", id)
		}
	}
	if good != 3 || bad != 2 {
		t.Errorf("5 players: got %d good / %d bad, want 3/2", good, bad)
	}
}

func TestDealHands(t *testing.T) {
	pool := []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	players := []PlayerID{0, 1}
	hands := DealHands(players, 5, pool)
	if got := hands[0]; len(got) != 5 || got[0] != 9 || got[4] != 5 {
		t.Errorf("hand 0 = %v, want first five of pool", got)
	}
	if got := hands[1]; len(got) != 5 || got[0] != 4 || got[4] != 0 {
		t.Errorf("hand 1 = %v, want last five of pool", got)
	}
}

func TestShuffledIntsIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	in := []int{10, 20, 30, 40, 50, 60}
	out := ShuffledInts(in, rng)
	if len(out) != len(in) {
		t.Fatalf("length changed: %d != %d", len(out), len(in))
	}
	seen := map[int]int{}
	for _, v := range out {
		seen[v]++
	}
	for _, v := range in {
		if seen[v] != 1 {
			t.Errorf("value %d appears %d times", v, seen[v])
		}
	}
}

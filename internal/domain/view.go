package domain

import "math/rand"

// ViewMappings holds, per viewer and per target, the display-slot to
// actual-slot permutation used to randomize how a target's hand is laid
// out for that viewer. A permutation is created lazily from a uniform
// draw, reused for the whole round so repeated queries cannot leak
// through mapping churn, regenerated when the target's hand length
// changes, and cleared wholesale at round and game boundaries.
type ViewMappings struct {
	byViewer map[PlayerID]map[PlayerID][]int
}

// NewViewMappings returns an empty mapping table.
func NewViewMappings() *ViewMappings {
	return &ViewMappings{byViewer: make(map[PlayerID]map[PlayerID][]int)}
}

// For returns the viewer's permutation over target's hand of the given
// length, creating or regenerating it as needed.
func (m *ViewMappings) For(viewer, target PlayerID, handLen int, rng *rand.Rand) []int {
	perTarget, ok := m.byViewer[viewer]
	if !ok {
		perTarget = make(map[PlayerID][]int)
		m.byViewer[viewer] = perTarget
	}
	perm, ok := perTarget[target]
	if !ok || len(perm) != handLen {
		perm = rng.Perm(handLen)
		perTarget[target] = perm
	}
	return perm
}

// ActualSlot resolves a display slot through the viewer's permutation
// for target. The second return is false when no mapping exists or the
// slot is out of range; a bad slot must be rejected, never coerced.
func (m *ViewMappings) ActualSlot(viewer, target PlayerID, displaySlot int) (int, bool) {
	perTarget, ok := m.byViewer[viewer]
	if !ok {
		return 0, false
	}
	perm, ok := perTarget[target]
	if !ok || displaySlot < 0 || displaySlot >= len(perm) {
		return 0, false
	}
	return perm[displaySlot], true
}

// Clear drops every permutation. Called at round end and on new games.
func (m *ViewMappings) Clear() {
	m.byViewer = make(map[PlayerID]map[PlayerID][]int)
}

// PlayerView is the per-viewer safe projection of a GameState. It never
// contains another player's role, the deck contents, or another
// player's hand beyond its length and the viewer's own display
// permutation over it.
type PlayerView struct {
	Phase Phase `json:"phase"`
	Round int   `json:"round"`

	// Role is the viewer's own role, empty until assigned.
	Role Team `json:"role,omitempty"`
	// Hand is the viewer's own deck indices in their own shuffled order.
	Hand []int `json:"hand"`
	// HandSizes gives the hand length of every player.
	HandSizes map[PlayerID]int `json:"handSizes"`
	// Mappings exposes, for each other player, the viewer's display-slot
	// to actual-slot permutation so the client can correlate reveal
	// events with rendered positions.
	Mappings map[PlayerID][]int `json:"mappings"`

	Claims        map[PlayerID]int `json:"claims"`
	MaxClaim      int              `json:"maxClaim"`
	Revealed      []RevealedWire   `json:"revealed"`
	FoundDefusing []RevealedWire   `json:"foundDefusing"`

	TurnOrder   []PlayerID `json:"turnOrder"`
	CurrentTurn PlayerID   `json:"currentTurn"`
	RoundEnded  bool       `json:"roundEnded"`

	LobbyReady map[PlayerID]bool `json:"lobbyReady"`
	SetupReady map[PlayerID]bool `json:"setupReady"`
	RoundReady map[PlayerID]bool `json:"roundReady"`

	Winner    Team   `json:"winner,omitempty"`
	WinReason string `json:"winReason,omitempty"`
}

// Project computes the safe view of g for one viewer, using (and
// lazily populating) the room's mapping table.
func Project(g *GameState, viewer PlayerID, mappings *ViewMappings, rng *rand.Rand) *PlayerView {
	view := &PlayerView{
		Phase:       g.Phase,
		Round:       g.Round,
		Role:        g.Roles[viewer],
		Hand:        append([]int(nil), g.Hands[viewer]...),
		HandSizes:   make(map[PlayerID]int, len(g.Hands)),
		Mappings:    make(map[PlayerID][]int),
		Claims:      copyClaims(g.Claims),
		MaxClaim:    MaxClaim(g),
		TurnOrder:   append([]PlayerID(nil), g.TurnOrder...),
		CurrentTurn: g.CurrentTurn,
		RoundEnded:  g.RoundEnded,
		LobbyReady:  copyFlags(g.LobbyReady),
		SetupReady:  copyFlags(g.SetupReady),
		RoundReady:  copyFlags(g.RoundReady),
		Winner:      g.Winner,
		WinReason:   g.WinReason,
	}

	for _, id := range g.PlayerIDs() {
		view.HandSizes[id] = len(g.Hands[id])
		if id != viewer {
			perm := mappings.For(viewer, id, len(g.Hands[id]), rng)
			view.Mappings[id] = append([]int(nil), perm...)
		}
	}

	// Older-round entries are visually irrelevant; FoundDefusing is the
	// durable summary.
	view.Revealed = make([]RevealedWire, 0, len(g.Revealed))
	for _, r := range g.Revealed {
		if r.Round == g.Round {
			view.Revealed = append(view.Revealed, r)
		}
	}
	view.FoundDefusing = append([]RevealedWire(nil), g.FoundDefusing...)

	return view
}

// ProjectAll computes one view per viewer from a single snapshot.
func ProjectAll(g *GameState, viewers []PlayerID, mappings *ViewMappings, rng *rand.Rand) map[PlayerID]*PlayerView {
	views := make(map[PlayerID]*PlayerView, len(viewers))
	for _, id := range viewers {
		views[id] = Project(g, id, mappings, rng)
	}
	return views
}

func copyClaims(in map[PlayerID]int) map[PlayerID]int {
	out := make(map[PlayerID]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyFlags(in map[PlayerID]bool) map[PlayerID]bool {
	out := make(map[PlayerID]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

package ws

import "encoding/json"

// InMsg is one inbound frame: a named command with a raw payload.
type InMsg struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

// OutMsg is one outbound frame.
type OutMsg struct {
	T string `json:"t"`
	P any    `json:"p,omitempty"`
}

type joinPayload struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
}

type rejoinPayload struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
	Identity int    `json:"identity"`
	// Token is the signed resume token handed out at join time. When
	// present it overrides the plain identity and name fields.
	Token string `json:"token,omitempty"`
}

type setReadyPayload struct {
	Ready bool `json:"ready"`
}

type submitClaimPayload struct {
	Claim int `json:"claim"`
}

type selectWirePayload struct {
	TargetIdentity int `json:"targetIdentity"`
	DisplaySlot    int `json:"displaySlot"`
}

type resumeTokenPayload struct {
	Token string `json:"token"`
}

type errPayload struct {
	Message string `json:"message"`
}

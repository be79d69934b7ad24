package ports

import "github.com/samaschen/timebomb-boardgame/internal/app"

// Dispatcher delivers engine events to transport sessions. An event
// with recipients goes only to those sessions; one without is broadcast
// to every connected session of the room. The engine never frames or
// encodes messages itself.
type Dispatcher interface {
	Dispatch(roomCode string, events []app.Event)
}

package application

import "expvar"

// Published under /debug/vars.
var (
	eventsCreated = expvar.NewInt("events_created")
	eventsJoined  = expvar.NewInt("events_joined")
	eventsDeleted = expvar.NewInt("events_deleted")
)

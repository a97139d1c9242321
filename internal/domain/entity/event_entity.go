package entity

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Event is the aggregate root for the event domain.
// CurrentParticipants always equals len(Participants).
type Event struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Location            string    `json:"location"`
	Date                time.Time `json:"date"`
	MaxParticipants     int       `json:"maxParticipants"`
	CurrentParticipants int       `json:"currentParticipants"`
	CreatorID           string    `json:"creatorId"`
	Participants        []string  `json:"participants"`
	CoverURL            string    `json:"coverUrl,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (e *Event) IsFull() bool {
	return e.CurrentParticipants >= e.MaxParticipants
}

func (e *Event) HasParticipant(userID string) bool {
	return slices.Contains(e.Participants, userID)
}

// Remaining returns the number of free seats, never negative.
func (e *Event) Remaining() int {
	if n := e.MaxParticipants - e.CurrentParticipants; n > 0 {
		return n
	}
	return 0
}

// Clone returns a deep copy so callers can't alias stored participant slices.
func (e *Event) Clone() *Event {
	c := *e
	c.Participants = append(make([]string, 0, len(e.Participants)), e.Participants...)
	return &c
}

// EventFilter narrows a listing. Empty fields match everything.
type EventFilter struct {
	Location string
	Search   string
}

// containsFold builds a fresh Caser per call since a Caser is stateful.
func containsFold(haystack, needle string) bool {
	c := cases.Fold()
	return strings.Contains(c.String(haystack), c.String(needle))
}

// Matches reports whether e passes the filter: location is a case-insensitive
// substring of e.Location, and search is one of e.Title or e.Description.
func (f EventFilter) Matches(e *Event) bool {
	if f.Location != "" && !containsFold(e.Location, f.Location) {
		return false
	}
	if f.Search != "" && !containsFold(e.Title, f.Search) && !containsFold(e.Description, f.Search) {
		return false
	}
	return true
}

// EventSummary is a listing row: the event plus its creator's public profile.
type EventSummary struct {
	Event
	Creator PublicProfile `json:"creator"`
}

// EventDetail expands the creator and participants into public profiles.
// Participants shadows the embedded id list when encoded.
type EventDetail struct {
	Event
	Creator      PublicProfile   `json:"creator"`
	Participants []PublicProfile `json:"participants"`
}

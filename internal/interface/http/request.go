package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/oksasatya/go-event-finder/internal/application"
	"github.com/oksasatya/go-event-finder/pkg/helpers"
	"github.com/oksasatya/go-event-finder/pkg/validation"
)

// flexInt accepts 12 as well as "12"; HTML number inputs post strings.
type flexInt struct {
	N     int
	Valid bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if s == "" {
		f.N, f.Valid = 0, true
		return nil
	}
	n, err := strconv.Atoi(s)
	f.N, f.Valid = n, err == nil
	return nil
}

type eventRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	Location        *string  `json:"location"`
	Date            *string  `json:"date"`
	MaxParticipants *flexInt `json:"maxParticipants"`
}

// decodeEventRequest reads an event body and the set of top-level keys it names.
func decodeEventRequest(body []byte) (*eventRequest, map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil, err
	}
	var req eventRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&req); err != nil {
		return nil, nil, err
	}
	return &req, raw, nil
}

// conversions collects per-field format errors before the service sees the input.
type conversions map[string]string

func (c conversions) date(s *string) *time.Time {
	if s == nil {
		return nil
	}
	if strings.TrimSpace(*s) == "" {
		return &time.Time{}
	}
	t, ok := helpers.ParseTimeAny(*s)
	if !ok {
		c["date"] = "must be a valid date"
		return nil
	}
	return &t
}

func (c conversions) count(v *flexInt) *int {
	if v == nil {
		return nil
	}
	if !v.Valid {
		c["maxParticipants"] = "must be a whole number"
		return nil
	}
	n := v.N
	return &n
}

func (c conversions) err() error {
	if len(c) == 0 {
		return nil
	}
	return &application.ValidationError{Fields: c}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (r *eventRequest) toCreate() (application.CreateEventInput, error) {
	conv := conversions{}
	date := conv.date(r.Date)
	seats := conv.count(r.MaxParticipants)
	if err := conv.err(); err != nil {
		return application.CreateEventInput{}, err
	}
	return application.CreateEventInput{
		Title:           deref(r.Title),
		Description:     deref(r.Description),
		Location:        deref(r.Location),
		Date:            deref(date),
		MaxParticipants: deref(seats),
	}, nil
}

// toUpdate never fails: format errors travel in Invalid so the service can
// check existence and ownership first.
func (r *eventRequest) toUpdate(keys map[string]json.RawMessage) application.UpdateEventInput {
	conv := conversions{}
	in := application.UpdateEventInput{
		Title:           r.Title,
		Description:     r.Description,
		Location:        r.Location,
		Date:            conv.date(r.Date),
		MaxParticipants: conv.count(r.MaxParticipants),
	}
	if len(conv) > 0 {
		in.Invalid = conv
	}
	for k := range keys {
		if application.IsImmutableEventField(k) {
			in.Immutable = append(in.Immutable, k)
		}
	}
	return in
}

// undecodableUpdate carries a body that could not be decoded at all.
func undecodableUpdate(err error) application.UpdateEventInput {
	details := validation.ToDetails(err)
	if len(details) == 0 {
		details = map[string]string{"payload": "invalid json"}
	}
	return application.UpdateEventInput{Invalid: details}
}

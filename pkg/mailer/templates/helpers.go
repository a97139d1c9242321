package templates

import (
	"encoding/json"
	"strings"
)

// EmailData defines the fields the event templates read.
type EmailData struct {
	AppName         string `json:"AppName"`
	RecipientName   string `json:"RecipientName"`
	ParticipantName string `json:"ParticipantName"`
	EventTitle      string `json:"EventTitle"`
	EventLocation   string `json:"EventLocation"`
	EventDate       string `json:"EventDate"`
	EventURL        string `json:"EventURL"`
	Seats           string `json:"Seats"`
}

// Option pattern
type Option func(*EmailData)

func WithAppName(name string) Option   { return func(d *EmailData) { d.AppName = name } }
func WithRecipient(name string) Option { return func(d *EmailData) { d.RecipientName = strings.TrimSpace(name) } }
func WithParticipant(name string) Option {
	return func(d *EmailData) { d.ParticipantName = strings.TrimSpace(name) }
}
func WithEventURL(url string) Option { return func(d *EmailData) { d.EventURL = url } }
func WithSeats(seats string) Option  { return func(d *EmailData) { d.Seats = seats } }

func WithEvent(title, location, date string) Option {
	return func(d *EmailData) {
		d.EventTitle = title
		d.EventLocation = location
		d.EventDate = date
	}
}

// NewData builds template data from options.
func NewData(opts ...Option) EmailData {
	var d EmailData
	for _, o := range opts {
		o(&d)
	}
	return d
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	repo "github.com/oksasatya/go-event-finder/internal/domain/repository"
	"github.com/oksasatya/go-event-finder/pkg/helpers"
	"github.com/oksasatya/go-event-finder/pkg/mailer"
	mailtpl "github.com/oksasatya/go-event-finder/pkg/mailer/templates"
)

// Notifier queues notification emails. Publishing is best-effort: errors are
// logged and never reach the caller.
type Notifier struct {
	Pub     JobPublisher
	Users   repo.UserRepository
	AppName string
	// EventURL is a fmt template taking the event id, e.g. "https://app/events/%s".
	EventURL string
	Logger   *logrus.Logger
}

func (n *Notifier) enabled() bool {
	return n != nil && n.Pub != nil && n.Users != nil
}

func (n *Notifier) eventURL(id string) string {
	if n.EventURL == "" {
		return ""
	}
	return fmt.Sprintf(n.EventURL, id)
}

// EventJoined tells the creator that participantID took a seat.
func (n *Notifier) EventJoined(ctx context.Context, e *entity.Event, participantID string) {
	if !n.enabled() {
		return
	}
	profiles, err := n.Users.GetProfiles(ctx, []string{e.CreatorID, participantID})
	if err != nil {
		n.warn("load profiles for notification failed", err, e.ID)
		return
	}
	creator, ok := profiles[e.CreatorID]
	if !ok || creator.Email == "" {
		return
	}
	data := mailtpl.NewData(
		mailtpl.WithAppName(n.AppName),
		mailtpl.WithRecipient(creator.Name),
		mailtpl.WithParticipant(profiles[participantID].Name),
		mailtpl.WithEvent(e.Title, e.Location, helpers.FormatEventTime(e.Date)),
		mailtpl.WithSeats(strconv.Itoa(e.CurrentParticipants)+"/"+strconv.Itoa(e.MaxParticipants)),
		mailtpl.WithEventURL(n.eventURL(e.ID)),
	)
	n.publish(ctx, e.ID, mailer.EmailJob{To: creator.Email, Template: mailtpl.EventJoined, Data: mailtpl.ToMap(data)})
}

// EventCancelled tells every participant that e was deleted.
func (n *Notifier) EventCancelled(ctx context.Context, e *entity.Event) {
	if !n.enabled() || len(e.Participants) == 0 {
		return
	}
	profiles, err := n.Users.GetProfiles(ctx, e.Participants)
	if err != nil {
		n.warn("load profiles for notification failed", err, e.ID)
		return
	}
	for _, id := range e.Participants {
		p, ok := profiles[id]
		if !ok || p.Email == "" {
			continue
		}
		data := mailtpl.NewData(
			mailtpl.WithAppName(n.AppName),
			mailtpl.WithRecipient(p.Name),
			mailtpl.WithEvent(e.Title, e.Location, helpers.FormatEventTime(e.Date)),
		)
		n.publish(ctx, e.ID, mailer.EmailJob{To: p.Email, Template: mailtpl.EventCancelled, Data: mailtpl.ToMap(data)})
	}
}

func (n *Notifier) publish(ctx context.Context, eventID string, job mailer.EmailJob) {
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := n.Pub.PublishJSON(c, job); err != nil {
		n.warn("publish email job failed", err, eventID)
	}
}

func (n *Notifier) warn(msg string, err error, eventID string) {
	if n.Logger != nil {
		helpers.LogWarn(n.Logger, msg, err, logrus.Fields{"event_id": eventID})
	}
}

package outbox

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/services"
	pkgoutbox "github.com/fatimahitawala/Transition-Services-sub002/pkg/outbox"
)

// EmailDispatcher delivers queued notification messages to the mail
// transport. Returned errors make the relay retry with backoff, so the
// transport only has to be eventually reachable.
type EmailDispatcher struct {
	transport services.Transport
	log       *logrus.Logger
}

func NewEmailDispatcher(transport services.Transport, log *logrus.Logger) *EmailDispatcher {
	return &EmailDispatcher{transport: transport, log: log}
}

func (d *EmailDispatcher) Dispatch(ctx context.Context, msg pkgoutbox.DispatchedMessage) error {
	if msg.Meta.Topic != services.NotificationTopic {
		// Unknown topics are acked so one bad producer cannot wedge the
		// queue.
		d.log.WithField("topic", msg.Meta.Topic).Warn("dropping outbox message with unknown topic")
		return nil
	}

	var payload services.EmailPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		d.log.WithError(err).WithField("event_id", msg.Meta.EventID).Warn("dropping undecodable outbox message")
		return nil
	}
	if len(payload.Primary) == 0 && len(payload.CC) == 0 {
		d.log.WithField("request_id", payload.RequestID).Warn("dropping notification without recipients")
		return nil
	}

	artifact := &services.Artifact{
		Subject:     payload.Subject,
		Body:        payload.Body,
		ContentType: payload.ContentType,
	}
	if err := d.transport.Send(ctx, artifact, payload.Primary, payload.CC); err != nil {
		return errors.Wrapf(err, "send notification for request %s", payload.RequestID)
	}

	d.log.WithFields(logrus.Fields{
		"request_id": payload.RequestID,
		"template":   payload.TemplateType,
		"primary":    len(payload.Primary),
		"cc":         len(payload.CC),
	}).Info("notification delivered")
	return nil
}

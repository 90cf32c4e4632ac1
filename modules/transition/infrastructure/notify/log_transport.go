package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/services"
)

// LogTransport writes outgoing mail to the application log instead of an
// SMTP gateway. It is the default transport for development and test
// environments.
type LogTransport struct {
	from string
	log  *logrus.Logger
}

func NewLogTransport(from string, log *logrus.Logger) *LogTransport {
	return &LogTransport{from: from, log: log}
}

func (t *LogTransport) Send(ctx context.Context, artifact *services.Artifact, primary, cc []string) error {
	t.log.WithFields(logrus.Fields{
		"from":         t.from,
		"to":           primary,
		"cc":           cc,
		"subject":      artifact.Subject,
		"content_type": artifact.ContentType,
		"bytes":        len(artifact.Body),
	}).Info("outgoing notification")
	return nil
}

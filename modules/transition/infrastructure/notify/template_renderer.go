package notify

import (
	"bytes"
	"context"
	"text/template"

	"github.com/go-faster/errors"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/services"
)

var builtinTemplates = map[recipientconfig.TemplateType]struct {
	subject string
	body    string
}{
	recipientconfig.TemplateMoveIn: {
		subject: "Move-in request {{.request_id}} is now {{.status}}",
		body:    "<p>Your move-in request for unit {{.unit_id}} is now <b>{{.status}}</b>.</p>",
	},
	recipientconfig.TemplateMoveOut: {
		subject: "Move-out request {{.request_id}} is now {{.status}}",
		body:    "<p>Your move-out request for unit {{.unit_id}} is now <b>{{.status}}</b>.</p>",
	},
	recipientconfig.TemplateWelcomePack: {
		subject: "Welcome to your new home",
		body:    "<p>Your move-in request for unit {{.unit_id}} has been approved. Welcome!</p>",
	},
	recipientconfig.TemplateRecipientMail: {
		subject: "Occupancy update for unit {{.unit_id}}",
		body:    "<p>Request {{.request_id}} ({{.category}}) changed to {{.status}}.</p>",
	},
}

// BuiltinRenderer renders notifications from compiled-in templates. It
// stands in for the document service in deployments that do not run one.
type BuiltinRenderer struct {
	templates map[recipientconfig.TemplateType]*renderedTemplate
}

type renderedTemplate struct {
	subject *template.Template
	body    *template.Template
}

func NewBuiltinRenderer() (*BuiltinRenderer, error) {
	out := make(map[recipientconfig.TemplateType]*renderedTemplate, len(builtinTemplates))
	for tt, raw := range builtinTemplates {
		subject, err := template.New(string(tt) + ":subject").Parse(raw.subject)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s subject template", tt)
		}
		body, err := template.New(string(tt) + ":body").Parse(raw.body)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s body template", tt)
		}
		out[tt] = &renderedTemplate{subject: subject, body: body}
	}
	return &BuiltinRenderer{templates: out}, nil
}

func (r *BuiltinRenderer) Render(
	ctx context.Context,
	templateType recipientconfig.TemplateType,
	data map[string]string,
) (*services.Artifact, error) {
	tpl, ok := r.templates[templateType]
	if !ok {
		return nil, errors.Errorf("no template registered for %q", templateType)
	}

	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return nil, errors.Wrapf(err, "render %s subject", templateType)
	}
	if err := tpl.body.Execute(&body, data); err != nil {
		return nil, errors.Wrapf(err, "render %s body", templateType)
	}

	return &services.Artifact{
		Subject:     subject.String(),
		Body:        body.Bytes(),
		ContentType: "text/html",
	}, nil
}

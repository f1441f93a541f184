package services

import (
	"bytes"
	"fmt"
	"html/template"
)

// Email templates keyed by name. Callers pass structured variables only;
// the template owns all markup.
var emailSubjects = map[string]string{
	"submission_submitted":  "Submission received: {{.Title}}",
	"screening_completed":   "Screening outcome for {{.Title}}",
	"reviewer_invited":      "Invitation to review: {{.Title}}",
	"review_completed":      "Review completed for {{.Title}}",
	"review_reminder":       "Reminder: review due for {{.Title}}",
	"decision_made":         "Editorial decision on {{.Title}}",
	"revision_submitted":    "Revision submitted for {{.Title}}",
	"payment_requested":     "Publication fee due for {{.Title}}",
	"payment_received":      "Payment received for {{.Title}}",
	"submission_published":  "Your article has been published: {{.Title}}",
	"submission_withdrawn":  "Submission withdrawn: {{.Title}}",
}

var emailBodies = map[string]string{
	"submission_submitted": `<p>Dear {{.RecipientName}},</p>
<p>The manuscript <strong>{{.Title}}</strong> ({{.Number}}) was submitted on {{.Date}} and has entered the editorial workflow.</p>
<p><a href="{{.Link}}">View submission</a></p>`,

	"screening_completed": `<p>Dear {{.RecipientName}},</p>
<p>Initial screening of <strong>{{.Title}}</strong> ({{.Number}}) has concluded: {{.Outcome}}.</p>
{{if .Note}}<p>Editor note: {{.Note}}</p>{{end}}
<p><a href="{{.Link}}">View submission</a></p>`,

	"reviewer_invited": `<p>Dear {{.RecipientName}},</p>
<p>You have been invited to review the manuscript <strong>{{.Title}}</strong>.</p>
{{if .DueDate}}<p>The review is due by {{.DueDate}}.</p>{{end}}
<p>Please accept or decline the invitation: <a href="{{.Link}}">respond here</a>.</p>`,

	"review_completed": `<p>Dear {{.RecipientName}},</p>
<p>A review for <strong>{{.Title}}</strong> ({{.Number}}) has been completed. The submission may now be eligible for an editorial decision.</p>
<p><a href="{{.Link}}">View reviews</a></p>`,

	"review_reminder": `<p>Dear {{.RecipientName}},</p>
<p>This is a reminder that your review of <strong>{{.Title}}</strong> is due{{if .DueDate}} by {{.DueDate}}{{end}}.</p>
<p><a href="{{.Link}}">Open the review form</a></p>`,

	"decision_made": `<p>Dear {{.RecipientName}},</p>
<p>An editorial decision has been made on <strong>{{.Title}}</strong> ({{.Number}}): <strong>{{.Decision}}</strong>.</p>
{{if .Comments}}<p>Editor comments: {{.Comments}}</p>{{end}}
<p><a href="{{.Link}}">View details</a></p>`,

	"revision_submitted": `<p>Dear {{.RecipientName}},</p>
<p>Revision #{{.RevisionNumber}} of <strong>{{.Title}}</strong> ({{.Number}}) has been submitted by the author.</p>
<p><a href="{{.Link}}">Review the revision</a></p>`,

	"payment_requested": `<p>Dear {{.RecipientName}},</p>
<p>The manuscript <strong>{{.Title}}</strong> ({{.Number}}) has been accepted. A publication fee of {{.Amount}} {{.Currency}} is due before production can begin.</p>
<p><a href="{{.Link}}">Settle the fee</a></p>`,

	"payment_received": `<p>Dear {{.RecipientName}},</p>
<p>The publication fee for <strong>{{.Title}}</strong> ({{.Number}}) has been received. The manuscript is now ready for final production.</p>`,

	"submission_published": `<p>Dear {{.RecipientName}},</p>
<p>The article <strong>{{.Title}}</strong> has been published{{if .DOI}} with DOI <a href="https://doi.org/{{.DOI}}">{{.DOI}}</a>{{end}}.</p>
{{if .Citation}}<p>{{.Citation}}</p>{{end}}`,

	"submission_withdrawn": `<p>Dear {{.RecipientName}},</p>
<p>The submission <strong>{{.Title}}</strong> ({{.Number}}) has been withdrawn and will receive no further consideration.</p>`,
}

var (
	subjectTemplates = map[string]*template.Template{}
	bodyTemplates    = map[string]*template.Template{}
)

func init() {
	for name, raw := range emailSubjects {
		subjectTemplates[name] = template.Must(template.New(name + "_subject").Parse(raw))
	}
	for name, raw := range emailBodies {
		bodyTemplates[name] = template.Must(template.New(name).Parse(raw))
	}
}

// RenderEmail renders the named template with the given variables and
// returns subject and HTML body.
func RenderEmail(name string, vars map[string]string) (string, string, error) {
	subjectTmpl, ok := subjectTemplates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	bodyTmpl := bodyTemplates[name]

	var subject, body bytes.Buffer
	if err := subjectTmpl.Execute(&subject, vars); err != nil {
		return "", "", err
	}
	if err := bodyTmpl.Execute(&body, vars); err != nil {
		return "", "", err
	}
	return subject.String(), body.String(), nil
}

package notification

import (
	"bytes"
	"fmt"
	"text/template"
)

// Template names
const (
	TemplateOrderPlaced     = "order-placed"
	TemplateOrderShipped    = "order-shipped"
	TemplateReturnRequested = "return-requested"
	TemplateReturnCanceled  = "return-canceled"
	TemplateCustomerWelcome = "customer-welcome"
)

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var templates = map[string]emailTemplate{
	TemplateOrderPlaced: mustTemplate(TemplateOrderPlaced,
		`{{.StoreName}}: order #{{.DisplayID}} confirmed`,
		`Thank you for your order #{{.DisplayID}}.

Items: {{.ItemCount}}
Total: {{.Total}}

We will let you know as soon as it ships.
{{.StoreURL}}/account/orders/{{.OrderID}}
`),
	TemplateOrderShipped: mustTemplate(TemplateOrderShipped,
		`{{.StoreName}}: order #{{.DisplayID}} is on its way`,
		`Your order #{{.DisplayID}} has shipped.
{{if .TrackingNumber}}
Tracking number: {{.TrackingNumber}}{{end}}{{if .TrackingURL}}
Track your parcel: {{.TrackingURL}}{{end}}
`),
	TemplateReturnRequested: mustTemplate(TemplateReturnRequested,
		`{{.StoreName}}: return for order #{{.DisplayID}} received`,
		`We registered your return for order #{{.DisplayID}}.

Items: {{.ItemCount}}
Refund on arrival: {{.RefundAmount}}
`),
	TemplateReturnCanceled: mustTemplate(TemplateReturnCanceled,
		`{{.StoreName}}: return for order #{{.DisplayID}} canceled`,
		`The return for order #{{.DisplayID}} was canceled. Any return label sent to you is no longer valid.
`),
	TemplateCustomerWelcome: mustTemplate(TemplateCustomerWelcome,
		`Welcome to {{.StoreName}}`,
		`Hi{{if .FirstName}} {{.FirstName}}{{end}},

your account is ready. Sign in at {{.StoreURL}}/account
`),
}

func mustTemplate(name, subject, body string) emailTemplate {
	return emailTemplate{
		subject: template.Must(template.New(name + "-subject").Option("missingkey=error").Parse(subject)),
		body:    template.Must(template.New(name + "-body").Option("missingkey=error").Parse(body)),
	}
}

// Render returns the subject and plain text body of a template
func Render(name string, data map[string]any) (string, string, error) {
	t, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var subject, body bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := t.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", name, err)
	}
	return subject.String(), body.String(), nil
}

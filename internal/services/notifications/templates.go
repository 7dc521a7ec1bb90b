package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

type Kind string

const (
	KindPaymentSucceeded      Kind = "payment_succeeded"
	KindSubscriptionCancelled Kind = "subscription_cancelled"
	KindPaymentFailed         Kind = "payment_failed"
	KindSubscriptionResumed   Kind = "subscription_resumed"
	KindRenewalReminder       Kind = "renewal_reminder"
)

type templateData struct {
	Name       string
	ValidUntil string
}

type emailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]emailTemplate{
	KindPaymentSucceeded: {
		subject: "Your Tackleit Pro Payment Was Successful",
		body: template.Must(template.New("payment_succeeded").Parse(`Hi {{.Name}},<br><br>
Thank you! Your payment for Tackleit Pro went through and your access is active{{if .ValidUntil}} until {{.ValidUntil}}{{end}}.<br><br>
Best,<br>The Tackleit Team`)),
	},
	KindSubscriptionCancelled: {
		subject: "Your Tackleit Pro Subscription Has Been Cancelled",
		body: template.Must(template.New("subscription_cancelled").Parse(`Hi {{.Name}},<br><br>
Your subscription to Tackleit Pro has been cancelled. Your Pro access will remain active until the end of your current billing period{{if .ValidUntil}} ({{.ValidUntil}}){{end}}.<br><br>
Thank you for using Tackleit Pro.<br><br>
Best,<br>The Tackleit Team`)),
	},
	KindPaymentFailed: {
		subject: "Action Required: Your Tackleit Pro Payment Failed",
		body: template.Must(template.New("payment_failed").Parse(`Hi {{.Name}},<br><br>
We're having trouble processing your payment for your Tackleit Pro subscription. This might be due to an expired card or insufficient funds.<br><br>
Please update your payment method to continue enjoying Pro features without interruption.<br><br>
Best,<br>The Tackleit Team`)),
	},
	KindSubscriptionResumed: {
		subject: "Your Tackleit Pro Subscription Has Resumed",
		body: template.Must(template.New("subscription_resumed").Parse(`Hi {{.Name}},<br><br>
Good news: your Tackleit Pro subscription is active again.<br><br>
Best,<br>The Tackleit Team`)),
	},
	KindRenewalReminder: {
		subject: "Your Tackleit Pro Subscription is Renewing Soon",
		body: template.Must(template.New("renewal_reminder").Parse(`Hi {{.Name}},<br><br>
This is a friendly reminder that your subscription to Tackleit Pro is scheduled to renew on {{.ValidUntil}}.<br><br>
No action is needed to continue your subscription. If you wish to make changes, please visit your account settings.<br><br>
Best,<br>The Tackleit Team`)),
	},
}

func render(kind Kind, name string, validUntil *time.Time) (string, string, error) {
	tpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", kind)
	}
	if name == "" {
		name = "there"
	}
	data := templateData{Name: name}
	if validUntil != nil {
		data.ValidUntil = validUntil.UTC().Format("2006-01-02")
	}

	var buf bytes.Buffer
	if err := tpl.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s template: %w", kind, err)
	}
	return tpl.subject, buf.String(), nil
}

package application

import (
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

type confirmationView struct {
	FirstName     string
	LastName      string
	Email         string
	BookingID     string
	ActivityName  string
	Quantity      int
	TotalPrice    int
	EventName     string
	EventDate     string
	EventLocation string
	SupportEmail  string
}

var funcs = map[string]interface{}{"title": titleCase}

var confirmationHTML = htmltemplate.Must(htmltemplate.New("confirmation.html").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Registration Confirmation</title></head>
<body>
  <h1>Registration Confirmed!</h1>
  <p>Hi {{title .FirstName}} {{title .LastName}},</p>
  <p>Your registration for {{.EventName}} has been successfully confirmed! Here are your registration details:</p>
  <p><strong>Booking ID: {{.BookingID}}</strong></p>
  <table>
    <tr><td>Name:</td><td>{{title .FirstName}} {{title .LastName}}</td></tr>
    <tr><td>Email:</td><td>{{.Email}}</td></tr>
    <tr><td>Activity:</td><td>{{.ActivityName}}</td></tr>
    <tr><td>Tickets:</td><td>{{.Quantity}}</td></tr>
    <tr><td>Total:</td><td>{{.TotalPrice}}</td></tr>
    {{- if .EventDate}}
    <tr><td>Event Date:</td><td>{{.EventDate}}</td></tr>
    {{- end}}
    {{- if .EventLocation}}
    <tr><td>Event Location:</td><td>{{.EventLocation}}</td></tr>
    {{- end}}
  </table>
  <p>Please arrive 15 minutes before your scheduled time and bring your booking ID. Payment can be made on-site.</p>
  {{- if .SupportEmail}}
  <p>For any queries, contact us at {{.SupportEmail}}</p>
  {{- end}}
  <p>Best regards,<br>Team Alldays</p>
</body>
</html>`))

var confirmationText = texttemplate.Must(texttemplate.New("confirmation.txt").Funcs(funcs).Parse(`Registration Confirmed - {{.EventName}}

Hi {{title .FirstName}} {{title .LastName}},

Your registration for {{.EventName}} has been successfully confirmed!

Booking ID: {{.BookingID}}
Activity: {{.ActivityName}} x {{.Quantity}}
Total: {{.TotalPrice}}
{{- if .EventDate}}
Event Date: {{.EventDate}}
{{- end}}
{{- if .EventLocation}}
Event Location: {{.EventLocation}}
{{- end}}

Best regards,
Team Alldays
`))

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

package bookingevents

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

type RenderedEmail struct {
	Subject string
	Text    string
	HTML    string
}

var confirmationHTML = template.Must(template.New("confirmation").Parse(`<h2>Booking Confirmed</h2>
<p>Hello {{.Name}},</p>
<p>Your booking is confirmed.</p>
<ul>
  <li>Bay: {{.Bay}}</li>
  <li>Service: {{.Service}}</li>
  <li>Start: {{.Start}}</li>
  <li>End: {{.End}}</li>
  <li>Code: {{.Code}}</li>
</ul>
<p>{{.Site}}</p>
`))

type confirmationView struct {
	Name, Bay, Service, Start, End, Code, Site string
}

// RenderConfirmation builds the confirmation email. Times are shown in the
// event's time zone when it names a loadable one, UTC otherwise.
func RenderConfirmation(e BookingConfirmedV1, site string) (RenderedEmail, error) {
	if err := e.Validate(); err != nil {
		return RenderedEmail{}, err
	}
	if site == "" {
		site = "Golf Center"
	}

	loc := time.UTC
	if e.TimeZone != "" {
		if l, err := time.LoadLocation(e.TimeZone); err == nil {
			loc = l
		}
	}
	start, _ := time.Parse(time.RFC3339, e.StartTime)
	end, _ := time.Parse(time.RFC3339, e.EndTime)

	view := confirmationView{
		Name:    e.CustomerName,
		Bay:     e.BayName,
		Service: e.ServiceName,
		Start:   start.In(loc).Format("Mon Jan 2 2006 15:04 MST"),
		End:     end.In(loc).Format("Mon Jan 2 2006 15:04 MST"),
		Code:    e.ConfirmationCode,
		Site:    site,
	}

	var html bytes.Buffer
	if err := confirmationHTML.Execute(&html, view); err != nil {
		return RenderedEmail{}, fmt.Errorf("render confirmation: %w", err)
	}

	text := fmt.Sprintf("Hello %s,\n\nYour booking is confirmed.\n\nBay: %s\nService: %s\nStart: %s\nEnd: %s\nCode: %s\n\n%s\n",
		view.Name, view.Bay, view.Service, view.Start, view.End, view.Code, view.Site)

	return RenderedEmail{
		Subject: "Your Booking Confirmation",
		Text:    text,
		HTML:    html.String(),
	}, nil
}

package httptransport

import (
	"html"

	"github.com/chasefleming/elem-go"
	"github.com/chasefleming/elem-go/attrs"

	"signup/internal/alert"
	"signup/internal/registration/form"
)

var fieldLabels = map[form.Field]string{
	form.FieldFirstName:       "First Name",
	form.FieldLastName:        "Last Name",
	form.FieldUsername:        "Username",
	form.FieldPhone:           "Phone",
	form.FieldCountry:         "Country",
	form.FieldPassword:        "Password",
	form.FieldConfirmPassword: "Confirm Password",
}

// text escapes s for use as element content. elem-go writes text and
// attribute values as given, so every user-supplied string goes through
// html.EscapeString.
func text(s string) elem.Node {
	return elem.Raw(html.EscapeString(s))
}

func fieldMessage(field form.Field, kind form.Kind) string {
	label := fieldLabels[field]
	switch kind {
	case form.KindRequired:
		return label + " is required"
	case form.KindMinLength:
		return label + " must be at least 6 characters"
	case form.KindMismatch:
		return "Passwords must match"
	}
	return label + " is invalid"
}

func page(title string, body ...elem.Node) string {
	return elem.Html(nil,
		elem.Head(nil,
			elem.Meta(attrs.Props{"charset": "utf-8"}),
			elem.Title(nil, text(title)),
		),
		elem.Body(nil,
			elem.Div(attrs.Props{attrs.Class: "container"}, body...),
		),
	).Render()
}

func alertList(alerts []alert.Alert) elem.Node {
	items := make([]elem.Node, 0, len(alerts))
	for _, a := range alerts {
		items = append(items, elem.Div(attrs.Props{
			attrs.Class: "alert alert-" + string(a.Kind),
			"role":      "alert",
		}, text(a.Message)))
	}
	return elem.Div(attrs.Props{attrs.Class: "alerts"}, items...)
}

func fieldGroup(f *form.Form, field form.Field, control elem.Node) elem.Node {
	children := []elem.Node{
		elem.Label(attrs.Props{attrs.For: string(field)}, text(fieldLabels[field])),
		control,
	}
	if kind, bad := f.FieldError(field); bad && f.Submitted() {
		children = append(children, elem.Div(attrs.Props{
			attrs.Class: "invalid-feedback",
			"data-for":  string(field),
		}, text(fieldMessage(field, kind))))
	}
	return elem.Div(attrs.Props{attrs.Class: "form-group"}, children...)
}

func controlClass(f *form.Form, field form.Field) string {
	if f.Submitted() && !f.FieldValid(field) {
		return "form-control is-invalid"
	}
	return "form-control"
}

func textInput(f *form.Form, field form.Field, inputType string, echo bool) elem.Node {
	props := attrs.Props{
		attrs.Type:  inputType,
		"id":        string(field),
		attrs.Name:  string(field),
		attrs.Class: controlClass(f, field),
	}
	if echo {
		props["value"] = html.EscapeString(f.Value(field))
	}
	return elem.Input(props)
}

func countrySelect(f *form.Form, countries []string) elem.Node {
	current := f.Value(form.FieldCountry)
	options := []elem.Node{
		elem.Option(attrs.Props{"value": ""}, elem.Text("Select a country")),
	}
	for _, c := range countries {
		props := attrs.Props{"value": html.EscapeString(c)}
		if c == current {
			props["selected"] = "selected"
		}
		options = append(options, elem.Option(props, elem.Text(html.EscapeString(c))))
	}
	return elem.Select(attrs.Props{
		"id":        string(form.FieldCountry),
		attrs.Name:  string(form.FieldCountry),
		attrs.Class: controlClass(f, form.FieldCountry),
	}, options...)
}

// renderRegister renders the registration view. Field errors appear only
// once the form has been submitted. Passwords are never written back.
func renderRegister(f *form.Form, alerts []alert.Alert, countries []string) string {
	button := attrs.Props{attrs.Type: "submit", attrs.Class: "btn btn-primary"}
	if f.Loading() {
		button["disabled"] = "disabled"
	}

	return page("Register",
		alertList(alerts),
		elem.H2(nil, text("Register")),
		elem.Form(attrs.Props{
			"method":     "post",
			"action":     registerPath,
			"novalidate": "novalidate",
		},
			fieldGroup(f, form.FieldFirstName, textInput(f, form.FieldFirstName, "text", true)),
			fieldGroup(f, form.FieldLastName, textInput(f, form.FieldLastName, "text", true)),
			fieldGroup(f, form.FieldUsername, textInput(f, form.FieldUsername, "text", true)),
			fieldGroup(f, form.FieldPhone, textInput(f, form.FieldPhone, "tel", true)),
			fieldGroup(f, form.FieldCountry, countrySelect(f, countries)),
			fieldGroup(f, form.FieldPassword, textInput(f, form.FieldPassword, "password", false)),
			fieldGroup(f, form.FieldConfirmPassword, textInput(f, form.FieldConfirmPassword, "password", false)),
			elem.Div(attrs.Props{attrs.Class: "form-group"},
				elem.Button(button, text("Register")),
				elem.A(attrs.Props{attrs.Href: loginPath, attrs.Class: "btn btn-link"}, text("Cancel")),
			),
		),
	)
}

func renderLogin(alerts []alert.Alert) string {
	return page("Login",
		alertList(alerts),
		elem.H2(nil, text("Login")),
		elem.P(nil, text("Sign in with your new account.")),
		elem.A(attrs.Props{attrs.Href: registerPath}, text("Register")),
	)
}

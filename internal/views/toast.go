// Package views renders the HTML fragments returned to HTMX requests.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Toast is the transient notification shown after a form-style action.
func Toast(kind ToastKind, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w,
			`<div class="toast toast-`+templ.EscapeString(string(kind))+`" role="status">`+
				templ.EscapeString(message)+
				`</div>`)
		return err
	})
}

// Redirect pairs a toast with an HTMX client-side redirect target.
func Redirect(kind ToastKind, message, location string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := Toast(kind, message).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w,
			`<div hidden hx-get="`+templ.EscapeString(location)+`" hx-trigger="load delay:1s" hx-target="body" hx-push-url="true"></div>`)
		return err
	})
}

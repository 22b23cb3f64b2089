package cli

import (
	"fmt"
	"io"

	"vidpace-sender/form"
)

// terminalView prints controller output as styled lines. The auto-hide
// delay has no meaning on a terminal and is ignored.
type terminalView struct {
	w io.Writer
}

func newTerminalView(w io.Writer) *terminalView {
	return &terminalView{w: w}
}

func (v *terminalView) ShowStatus(s form.Status) {
	switch s.Kind {
	case form.StatusSuccess:
		fmt.Fprintln(v.w, successStyle.Render("✅ "+s.Message))
	case form.StatusError:
		fmt.Fprintln(v.w, errorStyle.Render("❌ "+s.Message))
	default:
		fmt.Fprintln(v.w, infoStyle.Render(s.Message))
	}
}

func (v *terminalView) ShowPreview(body string) {
	fmt.Fprintln(v.w, headerStyle.Render("Email Preview"))
	fmt.Fprintln(v.w, previewStyle.Render(body))
}

func (v *terminalView) HidePreview() {}

// SetSending is a no-op: the command blocks until the request resolves.
func (v *terminalView) SetSending(bool) {}

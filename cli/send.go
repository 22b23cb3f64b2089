package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"vidpace-sender/compose"
	"vidpace-sender/form"
	"vidpace-sender/models"
)

// fieldFlags maps each form field to its command line flag.
var fieldFlags = map[string]string{
	models.FieldSenderEmail:    "from",
	models.FieldSenderPassword: "password",
	models.FieldRecipientEmail: "to",
	models.FieldRecipientName:  "name",
	models.FieldSubject:        "subject",
	models.FieldEmailBody:      "body",
}

func addFieldFlags(cmd *cobra.Command, fields ...string) {
	help := map[string]string{
		models.FieldSenderEmail:    "Sender email address",
		models.FieldSenderPassword: "Sender password (or SENDER_PASSWORD)",
		models.FieldRecipientEmail: "Recipient email address",
		models.FieldRecipientName:  "Recipient name, replaces {{name}} in the body",
		models.FieldSubject:        "Email subject",
		models.FieldEmailBody:      "Email body",
	}
	for _, f := range fields {
		cmd.Flags().String(fieldFlags[f], "", help[f])
	}
}

// collectFields starts from the saved values and applies every flag the
// user set, saving those edits like the form does on input.
func collectFields(ctx context.Context, cmd *cobra.Command, ctrl *form.Controller) (models.EmailRequest, error) {
	req, err := ctrl.Restore(ctx)
	if err != nil {
		return req, fmt.Errorf("failed to restore saved fields: %w", err)
	}
	for _, f := range models.Fields {
		flag := cmd.Flags().Lookup(fieldFlags[f])
		if flag == nil || !flag.Changed {
			continue
		}
		req.Set(f, flag.Value.String())
		if err := ctrl.Edit(ctx, f, flag.Value.String()); err != nil {
			return req, err
		}
	}
	return req, nil
}

func promptPassword(req *models.EmailRequest) error {
	if req.SenderPassword != "" {
		return nil
	}
	if pw := os.Getenv("SENDER_PASSWORD"); pw != "" {
		req.SenderPassword = pw
		return nil
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("App password").
				Description(fmt.Sprintf("Password for %s (never saved)", req.SenderEmail)).
				EchoMode(huh.EchoModePassword).
				Value(&req.SenderPassword),
		),
	).Run()
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the personalized email body",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, closeStore, err := newController(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		req, err := collectFields(cmd.Context(), cmd, ctrl)
		if err != nil {
			return err
		}
		return ctrl.Preview(req, newTerminalView(out))
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the email through the backend",
	Long: `Send the email through the backend.

Fields not given as flags are taken from the saved form data. The password
is read from --password, SENDER_PASSWORD, or an interactive prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ctrl, closeStore, err := newController(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		req, err := collectFields(ctx, cmd, ctrl)
		if err != nil {
			return err
		}

		view := newTerminalView(out)
		// an incomplete form is reported before asking for a password
		if req.SenderPassword == "" {
			probe := req
			probe.SenderPassword = "-"
			if err := compose.Validate(probe); err != nil {
				view.ShowStatus(form.Status{Kind: form.StatusError, Message: err.Error()})
				return err
			}
			if err := promptPassword(&req); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					fmt.Fprintln(out, warningStyle.Render("Send cancelled"))
					return nil
				}
				return fmt.Errorf("password prompt failed: %w", err)
			}
		}

		fmt.Fprintf(out, "%s %s\n", infoStyle.Render("Backend:"), newBackend().Endpoint())
		return ctrl.Send(ctx, req, view)
	},
}

func init() {
	addFieldFlags(previewCmd, models.FieldRecipientName, models.FieldEmailBody)
	addFieldFlags(sendCmd, models.Fields...)
}

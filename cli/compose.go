package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"vidpace-sender/compose"
	"vidpace-sender/form"
	"vidpace-sender/models"
)

const (
	actionPreview = "preview"
	actionSend    = "send"
	actionEdit    = "edit"
	actionQuit    = "quit"
)

func validateAddress(s string) error {
	if s != "" && !compose.IsValidEmail(s) {
		return errors.New("not a valid email address")
	}
	return nil
}

// composeForm is the terminal version of the compose page.
func composeForm(req *models.EmailRequest) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Your Email").Value(&req.SenderEmail).Validate(validateAddress),
			huh.NewInput().Title("App Password").Description("Never saved").
				EchoMode(huh.EchoModePassword).Value(&req.SenderPassword),
		),
		huh.NewGroup(
			huh.NewInput().Title("Recipient Email").Value(&req.RecipientEmail).Validate(validateAddress),
			huh.NewInput().Title("Recipient Name").Value(&req.RecipientName),
		),
		huh.NewGroup(
			huh.NewInput().Title("Subject").Value(&req.Subject),
			huh.NewText().Title("Message").
				Description("Use "+compose.NamePlaceholder+" for the recipient name").
				Value(&req.EmailBody),
		),
	)
}

// saveEdits writes back every field that differs from what was loaded.
func saveEdits(ctx context.Context, ctrl *form.Controller, before, after models.EmailRequest) error {
	for _, f := range models.Fields {
		if before.Get(f) == after.Get(f) {
			continue
		}
		if err := ctrl.Edit(ctx, f, after.Get(f)); err != nil {
			return err
		}
	}
	return nil
}

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Fill in the email form interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ctrl, closeStore, err := newController(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		req, err := ctrl.Restore(ctx)
		if err != nil {
			return fmt.Errorf("failed to restore saved fields: %w", err)
		}

		fmt.Fprintln(out, titleStyle.Render("Compose Email"))
		view := newTerminalView(out)

		action := actionEdit
		for {
			if action == actionEdit {
				before := req
				if err := composeForm(&req).Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}
					return err
				}
				if err := saveEdits(ctx, ctrl, before, req); err != nil {
					return err
				}
			}

			err := huh.NewForm(
				huh.NewGroup(
					huh.NewSelect[string]().
						Title("What next?").
						Options(
							huh.NewOption("Preview Email", actionPreview),
							huh.NewOption("Send Email", actionSend),
							huh.NewOption("Edit", actionEdit),
							huh.NewOption("Quit", actionQuit),
						).
						Value(&action),
				),
			).Run()
			if err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}

			switch action {
			case actionPreview:
				_ = ctrl.Preview(req, view)
			case actionSend:
				if err := ctrl.Send(ctx, req, view); err == nil {
					return nil
				}
			case actionQuit:
				return nil
			}
		}
	},
}

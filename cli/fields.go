package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"vidpace-sender/models"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Manage saved form data",
}

var fieldsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show saved form data",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, closeStore, err := newController(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		req, err := ctrl.Restore(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(out, titleStyle.Render("Saved form data"))
		for _, f := range models.Fields {
			if models.IsSecret(f) {
				continue
			}
			v := req.Get(f)
			if v == "" {
				v = warningStyle.Render("(empty)")
			}
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render(f), v)
		}
		return nil
	},
}

var fieldsSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Save a form field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, value := args[0], args[1]
		if !models.IsField(field) {
			return fmt.Errorf("unknown field %q (one of %v)", field, models.Fields)
		}
		if models.IsSecret(field) {
			fmt.Fprintln(out, warningStyle.Render("Passwords are never saved"))
			return nil
		}

		ctrl, closeStore, err := newController(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		if err := ctrl.Edit(cmd.Context(), field, value); err != nil {
			return err
		}
		fmt.Fprintln(out, successStyle.Render("Saved "+field))
		return nil
	},
}

var fieldsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all saved form data",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			err := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Clear all saved form data?").
						Value(&yes),
				),
			).Run()
			if err != nil {
				return fmt.Errorf("confirmation cancelled: %w", err)
			}
		}
		if !yes {
			fmt.Fprintln(out, infoStyle.Render("Nothing cleared"))
			return nil
		}

		ctrl, closeStore, err := newController(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		return ctrl.Clear(cmd.Context(), newTerminalView(out))
	},
}

func init() {
	fieldsClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	fieldsCmd.AddCommand(fieldsShowCmd, fieldsSetCmd, fieldsClearCmd)
}

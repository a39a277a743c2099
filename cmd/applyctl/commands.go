package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poofware/application-service/internal/validation"
)

// ---- start ----

func newStartCmd(flags *rootFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Create an application and print its resume link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := flags.form()
			if err != nil {
				return err
			}
			if file != "" {
				app, err := readApplicationFile(file)
				if err != nil {
					return err
				}
				form.SetValues(app)
			}
			if err := form.Start(cmd.Context()); err != nil {
				return fmt.Errorf("start application: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s application %s\n", okColor.Sprint("Created"), form.ID())
			fmt.Fprintf(cmd.OutOrStdout(), "Resume at: %s\n", infoColor.Sprint(form.ResumeURL()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file with initial values")
	return cmd
}

// ---- get ----

func newGetCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <id|resume-url>",
		Short: "Print a stored application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID(args[0])
			if err != nil {
				return err
			}
			form, err := flags.form()
			if err != nil {
				return err
			}
			if err := form.LoadID(cmd.Context(), id); err != nil {
				return fmt.Errorf("get application %s: %w", id, err)
			}
			return renderApplication(cmd.OutOrStdout(), form.Values(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

// ---- update ----

func newUpdateCmd(flags *rootFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id|resume-url>",
		Short: "Replace an application with the contents of a file (no validation)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID(args[0])
			if err != nil {
				return err
			}
			app, err := readApplicationFile(file)
			if err != nil {
				return err
			}
			form, err := flags.form()
			if err != nil {
				return err
			}
			form.SetID(id)
			form.SetValues(app)
			if err := form.Save(cmd.Context()); err != nil {
				return fmt.Errorf("update application %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s application %s\n", okColor.Sprint("Saved"), id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file with the full application")
	return cmd
}

// ---- submit ----

func newSubmitCmd(flags *rootFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit <id|resume-url>",
		Short: "Validate an application and request a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID(args[0])
			if err != nil {
				return err
			}
			form, err := flags.form()
			if err != nil {
				return err
			}
			if file != "" {
				app, err := readApplicationFile(file)
				if err != nil {
					return err
				}
				form.SetID(id)
				form.SetValues(app)
			} else if err := form.LoadID(cmd.Context(), id); err != nil {
				return fmt.Errorf("load application %s: %w", id, err)
			}

			res, err := form.Submit(cmd.Context())
			if err != nil {
				return fmt.Errorf("submit application %s: %w", id, err)
			}

			out := cmd.OutOrStdout()
			switch {
			case res.Accepted:
				fmt.Fprintf(out, "%s quote: %s\n", okColor.Sprint("Accepted"), infoColor.Sprintf("$%d", res.Quote))
				return nil
			case len(res.FieldErrors) > 0:
				fmt.Fprintln(out, errColor.Sprint("Application is incomplete:"))
				renderFieldErrors(out, res.FieldErrors)
			default:
				fmt.Fprintln(out, errColor.Sprint("Application was rejected by the service:"))
				for _, f := range res.ServerErrors {
					fmt.Fprintf(out, "  %s %s\n", errColor.Sprint("✗"), f)
				}
			}
			return fmt.Errorf("application %s was not accepted", id)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Submit these values instead of the stored ones")
	return cmd
}

// ---- check ----

func newCheckCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate an application file locally without contacting the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := readApplicationFile(file)
			if err != nil {
				return err
			}
			errs := validation.NewRuleset(nil).Messages(app)
			out := cmd.OutOrStdout()
			if len(errs) == 0 {
				fmt.Fprintf(out, "%s %s is complete\n", okColor.Sprint("✓"), file)
				return nil
			}
			fmt.Fprintf(out, "%s has %d problem(s):\n", file, len(errs))
			renderFieldErrors(out, errs)
			return fmt.Errorf("%s is not valid", file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file to check")
	return cmd
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/spf13/cobra"
)

func newPeriodCommand(factory DepsFactory) *cobra.Command {
	period := &cobra.Command{
		Use:   "period",
		Short: "Create or delete payroll periods",
	}

	var (
		month, year int
		name        string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a draft period for a month",
		RunE: withDeps(factory, func(cmd *cobra.Command, deps *Deps) error {
			req := payroll.CreatePeriodRequest{Month: month, Year: year}
			if name != "" {
				req.Name = &name
			}
			resp, err := deps.Payroll.CreatePeriod(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with %d working days\n",
				resp.Period.Name, resp.Period.ID, resp.Period.WorkingDays)
			for _, w := range resp.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return nil
		}),
	}
	create.Flags().IntVar(&month, "month", 0, "month number, 1-12")
	create.Flags().IntVar(&year, "year", 0, "four digit year")
	create.Flags().StringVar(&name, "name", "", "display name, defaults to \"January 2006\" style")
	_ = create.MarkFlagRequired("month")
	_ = create.MarkFlagRequired("year")

	var deleteID string
	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete a draft or in_review period and its records",
		RunE: withDeps(factory, func(cmd *cobra.Command, deps *Deps) error {
			if err := deps.Payroll.DeletePeriod(cmd.Context(), deleteID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", deleteID)
			return nil
		}),
	}
	del.Flags().StringVar(&deleteID, "id", "", "period id")
	_ = del.MarkFlagRequired("id")

	period.AddCommand(create, del)
	return period
}

func newGenerateCommand(factory DepsFactory) *cobra.Command {
	var periodID string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate or regenerate payroll records for a period",
		RunE: withDeps(factory, func(cmd *cobra.Command, deps *Deps) error {
			resp, err := deps.Payroll.GeneratePayroll(cmd.Context(), periodID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records, status %s\n",
				resp.Period.Name, len(resp.Records), resp.Period.Status)
			for _, issue := range resp.Issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "issue: %s (%s): %s\n", issue.EmployeeName, issue.EmployeeID, issue.Reason)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&periodID, "id", "", "period id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newExportCommand(factory DepsFactory) *cobra.Command {
	var (
		periodID string
		format   string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a period's payroll register as xlsx or csv",
		RunE: withDeps(factory, func(cmd *cobra.Command, deps *Deps) error {
			if out == "" || out == "-" {
				return deps.Payroll.ExportRecords(cmd.Context(), periodID, payroll.ExportFormat(format), cmd.OutOrStdout())
			}
			return exportToFile(cmd.Context(), deps.Payroll, periodID, payroll.ExportFormat(format), out)
		}),
	}
	cmd.Flags().StringVar(&periodID, "id", "", "period id")
	cmd.Flags().StringVar(&format, "format", string(payroll.ExportFormatXLSX), "xlsx or csv")
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// exportToFile renders into a temp file beside path and renames it into
// place, so a failed export leaves path untouched.
func exportToFile(ctx context.Context, svc payroll.PayrollService, periodID string, format payroll.ExportFormat, path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".payrollctl-export-*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := svc.ExportRecords(ctx, periodID, format, tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func newTokenCommand(factory JWTFactory) *cobra.Command {
	var (
		userID string
		role   string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local testing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := user.RolePermissions[user.Role(role)]; !ok {
				return fmt.Errorf("unknown role %q", role)
			}
			jwtService, err := factory()
			if err != nil {
				return err
			}
			token, expiresAt, err := jwtService.GenerateAccessToken(userID, user.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %d\n", expiresAt)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the user_id claim")
	cmd.Flags().StringVar(&role, "role", string(user.RoleAdmin), "admin, payroll_officer, approver or viewer")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

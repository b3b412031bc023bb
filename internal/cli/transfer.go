package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Thanat-Wut/worddee-api/internal/services"
)

func resolveFormat(flag, path string) (services.Format, error) {
	if flag != "" {
		return services.Format(flag), nil
	}
	return services.FormatFromFilename(path)
}

func newImportCommand(configPath *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import words from a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := resolveFormat(format, args[0])
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer file.Close()

			a, _, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Words().Import(cmd.Context(), f, file)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported %d, skipped %d\n", result.Imported, result.Skipped)
			for _, msg := range result.Errors {
				fmt.Fprintf(out, "  %s\n", msg)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "file format (csv|xlsx); inferred from the extension when empty")
	return cmd
}

func newExportCommand(configPath *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export all words to a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			f, err := resolveFormat(format, args[0])
			if err != nil {
				return err
			}

			a, _, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			file, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			defer func() {
				if cerr := file.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					os.Remove(args[0])
				}
			}()

			if err := a.Words().Export(cmd.Context(), f, file); err != nil {
				return fmt.Errorf("export %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported words to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "file format (csv|xlsx); inferred from the extension when empty")
	return cmd
}

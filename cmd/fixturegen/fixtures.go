package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mmrzaf/fixturegen/internal/app"
	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/registry"
	"github.com/mmrzaf/fixturegen/internal/validation"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

func fixturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Inspect fixture definitions",
	}

	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeService(svc)

			list, err := svc.ListFixtures()
			if err != nil {
				return err
			}
			if format == "json" {
				return printJSON(list)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSOURCE\tPROPERTIES\tHASH")
			for _, f := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, f.Source, strings.Join(f.Properties, ","), f.Hash[:12])
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	var showFormat string
	showCmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a fixture schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeService(svc)

			detail, err := svc.GetFixture(args[0])
			if err != nil {
				return err
			}
			if showFormat == "json" {
				return printJSON(detail)
			}
			data, err := yaml.Marshal(map[string]*domain.Schema{detail.Name: detail.Schema})
			if err != nil {
				return err
			}
			fmt.Printf("# source: %s\n# hash: %s\n%s", detail.Source, detail.Hash, data)
			return nil
		},
	}
	showCmd.Flags().StringVar(&showFormat, "format", "yaml", "Output format (yaml|json)")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every fixture file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			genRegistry := registry.DefaultGeneratorRegistry()
			loaded, err := app.LoadFixtures(cfg.FixturesDir, validation.NewValidator(genRegistry), newLogger(cfg))
			if err != nil {
				printInvalid(err)
				return err
			}
			if err := app.SampleFixtures(loaded, genRegistry); err != nil {
				printInvalid(err)
				return err
			}
			for _, c := range loaded.Collisions {
				warnColor.Printf("warning: fixture %q from %s overrides %s\n", c.Name, c.File, c.Previous)
			}
			okColor.Printf("%d fixtures in %d files are valid\n", len(loaded.Fixtures), len(loaded.Files))
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, validateCmd)
	return cmd
}

// printInvalid lists each fixture problem carried by err on its own line.
func printInvalid(err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Err == nil {
		return
	}
	for _, e := range multierr.Errors(derr.Err) {
		errColor.Fprintf(os.Stderr, "invalid: %v\n", e)
	}
}

func generatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generators",
		Short: "List the x-generator types fixtures may use",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range registry.DefaultGeneratorRegistry().List() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

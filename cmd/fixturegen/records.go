package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/model"
	"github.com/spf13/cobra"
)

func createCmd() *cobra.Command {
	var (
		quantity     int
		overrideJSON string
		refsJSON     string
		refsFile     string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "create <fixture>",
		Short: "Generate and persist records of a fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, err := model.ParseOverride(json.RawMessage(overrideJSON))
			if err != nil {
				return err
			}
			rawRefs := json.RawMessage(refsJSON)
			if refsFile != "" {
				data, err := os.ReadFile(refsFile)
				if err != nil {
					return domain.ConfigurationError("read_refs", "", err)
				}
				rawRefs = data
			}
			refs, err := domain.ParseExternalRefs(rawRefs)
			if err != nil {
				return err
			}

			svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeService(svc)

			records, err := svc.Create(cmd.Context(), args[0], quantity, override, refs)
			if err != nil {
				return err
			}

			if format == "json" {
				return printJSON(records)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tRECORD")
			for _, r := range records {
				body, _ := json.Marshal(r.Record)
				fmt.Fprintf(w, "%s\t%s\n", r.ID, body)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			okColor.Fprintf(os.Stderr, "created %d %s record(s)\n", len(records), args[0])
			return nil
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "n", 1, "Number of records to create")
	cmd.Flags().StringVar(&overrideJSON, "override", "", `Field override: a JSON object, or an array of objects applied in rotation`)
	cmd.Flags().StringVar(&refsJSON, "refs", "", "External schema references as a JSON array")
	cmd.Flags().StringVar(&refsFile, "refs-file", "", "File holding external schema references as a JSON array")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")
	return cmd
}

func createdCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "created [fixture]",
		Short: "List identifiers of created records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeService(svc)

			if len(args) == 1 {
				ids := svc.Factory().CreatedFor(args[0])
				if format == "json" {
					if ids == nil {
						ids = []string{}
					}
					return printJSON(ids)
				}
				for _, id := range ids {
					fmt.Println(id)
				}
				return nil
			}

			created := svc.Factory().Created()
			if format == "json" {
				return printJSON(created)
			}
			names := make([]string, 0, len(created))
			for name := range created {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FIXTURE\tCOUNT")
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%d\n", name, len(created[name]))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")
	return cmd
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every record created so far",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeService(svc)

			before := countCreated(svc.Factory().Created())
			clearErr := svc.ClearAll(cmd.Context())
			remaining := svc.Factory().Created()

			if n := before - countCreated(remaining); n > 0 || clearErr == nil {
				okColor.Printf("cleared %d record(s)\n", n)
			}
			if clearErr != nil {
				for name, ids := range remaining {
					warnColor.Fprintf(os.Stderr, "kept %d %s record(s) for a retry\n", len(ids), name)
				}
			}
			return clearErr
		},
	}
}

func countCreated(created map[string][]string) int {
	n := 0
	for _, ids := range created {
		n += len(ids)
	}
	return n
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mmrzaf/fixturegen/internal/app"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func targetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Inspect the configured persistence target",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the target with credentials redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(app.RedactTarget(&cfg.Target))
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}

	var (
		timeout time.Duration
		format  string
	)
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Connect to the target and probe insert and remove",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			check, checkErr := app.CheckTarget(ctx, &cfg.Target)
			if format == "json" {
				if err := printJSON(check); err != nil {
					return err
				}
				return checkErr
			}

			fmt.Printf("kind:       %s\n", check.Kind)
			fmt.Printf("dsn:        %s\n", app.RedactDSN(cfg.Target.Kind, cfg.Target.DSN))
			if check.OK {
				okColor.Println("status:     ok")
			} else {
				errColor.Println("status:     failed")
			}
			fmt.Printf("latency:    %dms\n", check.LatencyMS)
			if check.ServerVer != "" {
				fmt.Printf("version:    %s\n", check.ServerVer)
			}
			fmt.Printf("can insert: %t\n", check.Capabilities.CanInsert)
			fmt.Printf("can remove: %t\n", check.Capabilities.CanRemove)
			return checkErr
		},
	}
	checkCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Overall check timeout")
	checkCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	cmd.AddCommand(showCmd, checkCmd)
	return cmd
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/samaj-vote/db"
	"github.com/danielhkuo/samaj-vote/models"
)

func seedZonesCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed-zones",
		Short: "Upsert the zone registry (embedded, or --file YAML)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			zones, err := loadRegistry(file)
			if err != nil {
				return err
			}

			conn, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.SeedZones(cmd.Context(), conn, zones); err != nil {
				return err
			}

			for _, z := range zones {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-16s %2d seats  %s\n",
					z.ElectionType, z.Code, z.SeatCount, z.ID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d zones\n", len(zones))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "registry YAML file (defaults to the embedded registry)")
	return cmd
}

func loadRegistry(file string) ([]models.Zone, error) {
	if file == "" {
		return db.DefaultRegistry()
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	return db.ParseRegistry(data)
}

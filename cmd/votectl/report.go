// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/samaj-vote/election"
	"github.com/danielhkuo/samaj-vote/models"
)

func turnoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "turnout ZONE_ID",
		Short: "Print turnout counters for one zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			t, err := election.NewAggregator(conn).ZoneTurnout(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRegions(cmd.OutOrStdout(), []models.RegionTurnout{t})
			return nil
		},
	}
}

func resultsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "results [ELECTION]",
		Short: "Print results for one election, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			elections := models.AllElections
			if len(args) == 1 {
				e, err := models.ParseElectionType(args[0])
				if err != nil {
					return err
				}
				elections = []models.ElectionType{e}
			}

			conn, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			// No caching for a one-shot command
			composer := election.NewComposer(conn, election.NewAggregator(conn), 0, nil)
			out := cmd.OutOrStdout()
			for i, e := range elections {
				r, err := composer.Compose(cmd.Context(), e)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				printSummary(out, r)
			}
			return nil
		},
	}
}

func printSummary(out io.Writer, r models.ElectionResults) {
	s := r.Election
	fmt.Fprintf(out, "%s: %s of %s voted (%.1f%%), %s votes across %d regions\n",
		s.Name,
		humanize.Comma(int64(s.TotalVoted)),
		humanize.Comma(int64(s.TotalVoters)),
		s.TurnoutPercentage,
		humanize.Comma(int64(s.TotalVotes)),
		s.TotalRegions,
	)
	printRegions(out, s.Regions)
}

func printRegions(out io.Writer, regions []models.RegionTurnout) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ZONE\tSEATS\tVOTERS\tVOTED\tTURNOUT\tVOTES\tNOTA\tFLAGS")
	for _, t := range regions {
		flags := ""
		if t.IsFrozen {
			flags += "frozen "
		}
		if !t.Consistent {
			flags += "INCONSISTENT"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.1f%%\t%s\t%s\t%s\n",
			t.Name,
			t.SeatCount,
			humanize.Comma(int64(t.TotalVoters)),
			humanize.Comma(int64(t.UniqueVotersVoted)),
			t.TurnoutPercentage,
			humanize.Comma(int64(t.TotalVotes)),
			humanize.Comma(int64(t.NOTAVotes)),
			flags,
		)
	}
	tw.Flush()
}

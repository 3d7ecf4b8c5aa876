package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"goban/internal/render"
	"goban/internal/script"
)

func newReplayCommand() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "replay FILE...",
		Short: "Run YAML move scripts and check their expectations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				s, err := script.LoadFile(path)
				if err != nil {
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					failed++
					continue
				}
				board, err := s.Run()
				if err != nil {
					fmt.Fprintf(out, "FAIL %v\n", err)
					failed++
				} else {
					fmt.Fprintf(out, "ok   %s\n", s.Name)
				}
				if board != nil && (!quiet || err != nil) {
					fmt.Fprint(out, render.Text(board.Snapshot()))
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scripts failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the board of failing scripts")
	return cmd
}

package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"goban/internal/bootstrap"
	"goban/internal/delivery/console"
	"goban/internal/delivery/rpc"
	"goban/internal/domain/game"
	"goban/internal/domain/goban"
	"goban/internal/render"
)

type playOptions struct {
	size    int
	suicide string
	jitter  bool
	seed    int64
	remote  string
	gameID  string
}

func newPlayCommand(cfgPath *string) *cobra.Command {
	var opts playOptions
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a hot-seat game in the terminal",
		Long: "Play a hot-seat game in the terminal. Without --grpc the board lives in this\n" +
			"process; with it the moves go to a running server.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := NewLogger()
			defer func() { _ = logger.Sync() }()

			cfg, err := bootstrap.Setup(*cfgPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("size") {
				opts.size = cfg.BoardSize
			}
			if !cmd.Flags().Changed("suicide") {
				opts.suicide = cfg.SuicideRule
			}
			if !cmd.Flags().Changed("jitter") {
				opts.jitter = cfg.Jitter
			}
			if !cmd.Flags().Changed("seed") {
				opts.seed = cfg.JitterSeed
			}

			var table console.Table
			if opts.remote != "" {
				conn, err := grpc.NewClient(opts.remote, grpc.WithTransportCredentials(insecure.NewCredentials()))
				if err != nil {
					return err
				}
				defer conn.Close()
				client := rpc.NewClient(conn)
				if opts.gameID == "" {
					created, err := client.Create(cmd.Context(), game.CreateGameRequest{
						BoardSize: opts.size, Suicide: opts.suicide, Jitter: &opts.jitter, JitterSeed: opts.seed,
					})
					if err != nil {
						return err
					}
					opts.gameID = created.Game.ID
					opts.size = created.Game.BoardSize
					fmt.Fprintf(cmd.OutOrStdout(), "created game %s on %s\n", opts.gameID, opts.remote)
				} else {
					current, err := client.Get(cmd.Context(), opts.gameID)
					if err != nil {
						return err
					}
					opts.size = current.Game.BoardSize
				}
				table = console.NewRemoteTable(client, opts.gameID)
			} else {
				policy, err := goban.ParseSuicidePolicy(opts.suicide)
				if err != nil {
					return err
				}
				board, err := goban.New(opts.size, goban.Rules{Suicide: policy})
				if err != nil {
					return err
				}
				var rng *rand.Rand
				if opts.jitter {
					if opts.seed == 0 {
						opts.seed = time.Now().UnixNano()
					}
					rng = rand.New(rand.NewSource(opts.seed))
				}
				table = console.NewLocalTable(board, rng)
			}

			c := console.New(table, render.DefaultLayout(opts.size), cmd.InOrStdin(), cmd.OutOrStdout(), logger)
			return c.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&opts.size, "size", goban.DefaultSize, "board size")
	cmd.Flags().StringVar(&opts.suicide, "suicide", string(goban.SuicideStrict), "suicide rule: strict or permissive")
	cmd.Flags().BoolVar(&opts.jitter, "jitter", false, "nudge every stone by up to one point")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "jitter seed, 0 for a time based one")
	cmd.Flags().StringVar(&opts.remote, "grpc", "", "address of a goban server to play on")
	cmd.Flags().StringVar(&opts.gameID, "game", "", "game to continue on the server (default: create one)")
	return cmd
}

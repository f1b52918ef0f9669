package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/intelligrit/emotion-atlas/internal/graph"
	"github.com/intelligrit/emotion-atlas/internal/metrics"
	"github.com/intelligrit/emotion-atlas/internal/pipeline"
	"github.com/intelligrit/emotion-atlas/internal/store"
	"github.com/intelligrit/emotion-atlas/internal/web"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve progress, graph and statistics as a JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("host") {
			serveHost = cfg.Server.Host
		}
		if !cmd.Flags().Changed("port") {
			servePort = cfg.Server.Port
		}

		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		m := metrics.New()
		files := pipeline.FilesIn(dataDir)
		if g, err := graph.Load(files.Graph, files.Catalog); err == nil {
			m.SetGraphSize(g.NumNodes(), g.NumEdges())
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		srv := &web.Server{
			Files:   files,
			History: s,
			Metrics: m.Handler(),
			Addr:    fmt.Sprintf("%s:%d", serveHost, servePort),
			Log:     log,
		}
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host to listen on")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

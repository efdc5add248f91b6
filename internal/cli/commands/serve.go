package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/ui"
	"github.com/leapstack-labs/leapgrid/internal/versions"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Start the editing session server",
		Long: `Start the HTTP server hosting a live editing session: the document
API, version history, and the background auto-saver. When a file is
given it is opened before the server starts.`,
		Example: `  # Serve with no document open
  leapgrid serve

  # Open budget.csv and serve on a custom address
  leapgrid serve budget.csv --addr localhost:9000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			stateStore, cleanup, err := cmdCtx.OpenStateStore()
			if err != nil {
				return err
			}
			defer cleanup()

			settings, err := stateStore.LoadAutoSave()
			if err != nil {
				return err
			}

			sess := cmdCtx.NewSession()
			if len(args) == 1 {
				if err := sess.Open(args[0]); err != nil {
					return err
				}
			}

			if addr == "" {
				addr = cmdCtx.Cfg.UIAddr
			}

			var srv *ui.Server
			saver := versions.NewAutoSaver(cmdCtx.Store, sess, settings,
				versions.WithAuditStore(stateStore),
				versions.WithAutoSaverLogger(cmdCtx.Logger),
				versions.WithSaveCallback(func(core.AutoSaveEvent) {
					if srv != nil {
						srv.Notifier().Broadcast()
					}
				}),
			)

			srv = ui.NewServer(ui.Config{
				Addr:       addr,
				VersionDir: cmdCtx.Cfg.VersionDir,
				Logger:     cmdCtx.Logger,
			}, sess, saver, stateStore)

			cmdCtx.Renderer.Printf("Serving on http://%s\n", addr)
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to ui_addr from config)")
	return cmd
}

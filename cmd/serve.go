package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/conneroisu/redactor/internal/catalog"
	"github.com/conneroisu/redactor/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tag engine to editors over a websocket",
	Long: `Start a websocket server that lints, tags and normalizes text for editor
integrations. Clients connect to /ws and send JSON requests; /healthz reports
server status.

Requests look like:
  {"id":"1","op":"lint","text":"[[caja:Hi]]"}
  {"id":"2","op":"inline","text":"a word","selectionStart":2,"selectionEnd":6,"tag":"nota"}
  {"id":"3","op":"block","text":"","cursor":0,"tag":"alerta","title":"Ojo"}
  {"id":"4","op":"normalize","text":"a\r\n\r\n\r\n\r\nb"}

Examples:
  redactor serve                 # Listen on server.host:server.port
  redactor serve --port 9000     # Listen on another port
  redactor serve --catalog refs.yml`,
	PreRunE: bindCatalogFlag,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 7777, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().String("catalog", "", "Default reference catalog file (YAML)")

	AddFlagValidation(serveCmd.Flags(), "catalog", ValidateFileExists)

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Lint.CatalogFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, cat, logger)
	return srv.Start(ctx)
}

package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/graphscope/am"
	"github.com/teranos/graphscope/errors"
	"github.com/teranos/graphscope/graph"
	"github.com/teranos/graphscope/logger"
	"github.com/teranos/graphscope/metrics"
	"github.com/teranos/graphscope/pipeline"
	"github.com/teranos/graphscope/server"
)

// ServerCmd starts the dashboard server
var ServerCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   "Start the graphscope dashboard server",
	Long: `Load the configured edge and node tables and serve the interactive dashboard.

Every browser tab gets its own session: searching, filtering, coloring and
sizing only ever touch that session's view. Config files and the renderer
options file are watched; verbosity, the session cap and renderer options
are applied without a restart.`,
	RunE: runServer,
}

var (
	serverData      dataFlags
	serverPort      int
	serverHost      string
	serverOpen      bool
	serverNoWatcher bool
)

func init() {
	serverData.register(ServerCmd)
	ServerCmd.Flags().IntVar(&serverPort, "port", 0, "Listen port (overrides server.port)")
	ServerCmd.Flags().StringVar(&serverHost, "host", "", "Listen host (overrides server.host)")
	ServerCmd.Flags().BoolVar(&serverOpen, "open", false, "Open the dashboard in the default browser")
	ServerCmd.Flags().BoolVar(&serverNoWatcher, "no-watch", false, "Do not reload configuration on file changes")
}

func applyServerFlags(cfg *am.Config) {
	serverData.apply(cfg)
	if serverPort != 0 {
		port := serverPort
		cfg.Server.Port = &port
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	applyServerFlags(cfg)
	if err := cfg.ValidateForServe(); err != nil {
		pterm.Error.Println(err.Error())
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.Println(hint)
		}
		return err
	}

	// The -v count wins over the configured verbosity; server output defaults to Info
	flagVerbosity, _ := cmd.Flags().GetCount("verbose")
	verbosity := serverVerbosity(flagVerbosity, cfg)
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	if err := logger.Initialize(jsonLogs || cfg.Log.JSON, verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	log := logger.ComponentLogger("graphscope")

	if logger.ShouldOutput(verbosity, logger.OutputConfig) {
		log.Infow("Configuration loaded", "config", cfg.String(), "files", am.ConfigFiles())
	}

	ds, err := loadDataset(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	render, err := graph.LoadOptions(cfg.Data.OptionsFile, cfg.Data.Directed)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	pipe := pipeline.New(ds, cfg.PipelineConfig(), reg, log)
	srv := server.New(pipe, server.Options{
		Config:    cfg.Server,
		Render:    render,
		Metrics:   reg,
		Logger:    log,
		Verbosity: verbosity,
	})

	listener, err := srv.Listen()
	if err != nil {
		return err
	}
	url := fmt.Sprintf("http://%s", listener.Addr().(*net.TCPAddr).String())

	nodes, edges := ds.Len()
	printStartupBanner(verbosity, cfg, url, nodes, edges)

	if !serverNoWatcher {
		watcher, err := startWatcher(cfg, srv, flagVerbosity)
		if err != nil {
			log.Warnw("Config watcher disabled", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(listener)
	}()

	if serverOpen {
		openBrowser(url)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server stopped unexpectedly")
	case <-sigChan:
		pterm.Info.Println("Shutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- srv.Stop(context.Background())
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return errors.Wrap(err, "shutdown error")
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("Force shutdown - exiting immediately")
			os.Exit(1)
			return nil
		}
	}
}

func serverVerbosity(flagVerbosity int, cfg *am.Config) int {
	if flagVerbosity > 0 {
		return flagVerbosity
	}
	return max(cfg.Log.Verbosity, 1)
}

// startWatcher reloads the server when a config file or the renderer options file changes
func startWatcher(cfg *am.Config, srv *server.Server, flagVerbosity int) (*am.ConfigWatcher, error) {
	paths := append(am.ConfigFiles(), cfg.Data.OptionsFile)
	watcher, err := am.NewConfigWatcher(paths...)
	if err != nil {
		return nil, err
	}

	watcher.OnReload(func(next *am.Config) error {
		applyServerFlags(next)
		next.Log.Verbosity = serverVerbosity(flagVerbosity, next)
		return srv.Reload(next)
	})
	watcher.Start()
	am.SetGlobalWatcher(watcher)
	return watcher, nil
}

// openBrowser attempts to open the URL in the default browser
func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "darwin":
		err = exec.Command("open", url).Start()
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("cmd", "/c", "start", url).Start()
	}
	// Silently ignore errors - user can manually open the URL
	_ = err
}

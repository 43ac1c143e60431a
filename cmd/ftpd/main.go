// Command ftpd runs a standalone FTP server backed by the local
// filesystem, configured from a TOML file.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jinzhu/configor"

	"github.com/goftpd/ftpd"
	"github.com/goftpd/ftpd/fs"
	"github.com/goftpd/ftpd/log/gokit"
)

func main() {
	var confFile, dataDir string
	var confOnly bool

	flag.StringVar(&confFile, "conf", "ftpd.toml", "Configuration file")
	flag.StringVar(&dataDir, "data", "data", "Data directory accounts are chrooted under")
	flag.BoolVar(&confOnly, "conf-only", false, "Write the default configuration file and exit")
	flag.Parse()

	if err := ensureConfigFile(confFile); err != nil {
		fmt.Fprintf(os.Stderr, "could not prepare config file: %v\n", err)
		os.Exit(1)
	}

	if confOnly {
		return
	}

	var cfg fileConfig
	if err := configor.Load(&cfg, confFile); err != nil {
		fmt.Fprintf(os.Stderr, "could not load %s: %v\n", confFile, err)
		os.Exit(1)
	}

	settings, err := cfg.Server.toSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := gokit.NewGKLoggerStdout()

	driver := &fs.Driver{
		Logger:   logger,
		RootDir:  dataDir,
		Users:    cfg.Users,
		Settings: settings,
	}

	server := ftpd.NewServer(driver)
	server.Logger = logger

	go handleSignals(server)

	if err := server.ListenAndServe(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func ensureConfigFile(confFile string) error {
	if _, err := os.Stat(confFile); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	return os.WriteFile(confFile, []byte(defaultConfigContents), 0o644)
}

func handleSignals(server *ftpd.Server) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(ch)

	<-ch

	if err := server.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "error stopping server: %v\n", err)
	}
}

// Command pepperd is the editor server: it owns the listening socket,
// every connected client, every spawned language server, and the
// single-threaded editor core that drives them all one tick at a time.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/dshills/pepperd/internal/config"
	"github.com/dshills/pepperd/internal/crash"
	"github.com/dshills/pepperd/internal/dispatcher"
	"github.com/dshills/pepperd/internal/editor"
	"github.com/dshills/pepperd/internal/platform"
	"github.com/dshills/pepperd/internal/project"
	"github.com/dshills/pepperd/internal/session"
)

var (
	configPath  string
	sessionName string
)

func main() {
	root := &cobra.Command{
		Use:   "pepperd",
		Short: "Modal text editor server",
		Long:  "pepperd hosts editor state and a socket clients attach to as thin TTY frontends.",
		RunE:  run,
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "Path to a TOML settings file (a trailing ! ignores a missing file)")
	root.Flags().StringVarP(&sessionName, "session", "s", "", "Session name (alphanumeric); defaults to a hash of the working directory")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pepperd:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	defer crash.Recover("")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := hclog.New(&hclog.LoggerOptions{
		Name:  "pepperd",
		Level: hclog.LevelFromString(cfg.Logging.Level),
	})

	sockPath, err := socketPath(sessionName)
	if err != nil {
		return fmt.Errorf("resolving socket path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(sockPath), 0o700); err != nil {
		return fmt.Errorf("creating socket directory: %w", err)
	}

	p, err := platform.Listen(sockPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", sockPath, err)
	}
	defer p.Close()
	log.Info("listening", "socket", sockPath)

	state := editor.NewState(cfg)

	sessPath := sockPath + ".session.yaml"
	snap, err := session.Load(sessPath)
	if err != nil {
		log.Warn("loading session", "path", sessPath, "error", err)
	} else {
		state.RestoreSession(snap)
	}

	loop := dispatcher.New(p, state, log, cfg.Editor.IdleTimeoutMS)

	if w, err := project.NewWatcher(filepath.Join(".pepperd", "lsp.toml")); err == nil {
		defer w.Close()
		loop.WatchProject(w)
		log.Debug("watching workspace recipe file")
	} else {
		log.Debug("workspace recipe watcher disabled", "error", err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		log.Info("signal received, shutting down")
		p.Close()
	}()

	runErr := loop.Run()
	if err := session.Save(sessPath, state.Snapshot()); err != nil {
		log.Warn("saving session", "path", sessPath, "error", err)
	}
	return runErr
}

func loadConfig() (*config.Settings, error) {
	if configPath != "" {
		// A trailing "!" makes a missing file non-fatal; any other read
		// or parse error is fatal either way.
		path := strings.TrimSuffix(configPath, "!")
		if path == configPath {
			if _, err := os.Stat(path); os.IsNotExist(err) {
				return nil, fmt.Errorf("config file %s not found", path)
			}
		}
		return config.Load(path)
	}
	home, err := os.UserConfigDir()
	if err != nil {
		return config.Default(), nil
	}
	return config.Load(filepath.Join(home, "pepper", "pepperd.toml"))
}

// socketPath derives the listening socket's path per spec.md §6:
// $XDG_RUNTIME_DIR (or the OS equivalent os.TempDir falls back to)
// joined with "pepper/<session-name>", where session-name defaults to
// a hash of the working directory so distinct projects never collide
// on the same socket.
func socketPath(name string) (string, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = os.TempDir()
	}
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		sum := sha256.Sum256([]byte(cwd))
		name = hex.EncodeToString(sum[:])[:16]
	}
	return filepath.Join(runtimeDir, "pepper", name), nil
}

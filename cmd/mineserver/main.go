// Command mineserver starts the shared-board Minesweeper TCP server.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tomasstrnad1997/minesserver/internal/audit"
	"github.com/tomasstrnad1997/minesserver/internal/board"
	"github.com/tomasstrnad1997/minesserver/internal/config"
	"github.com/tomasstrnad1997/minesserver/internal/loader"
	"github.com/tomasstrnad1997/minesserver/internal/server"
	"github.com/tomasstrnad1997/minesserver/internal/spectate"
)

const defaultRandomSize = 10

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mineserver [--debug | --no-debug] [--port PORT] "+
		"[--size SIZE_X,SIZE_Y | --file FILE] [--config FILE] [--audit-db FILE] [--spectate-addr ADDR]")
}

func main() {
	var (
		debug        = flag.Bool("debug", false, "keep a connection open after it detonates a mine")
		noDebug      = flag.Bool("no-debug", false, "disconnect a connection after it detonates a mine (default)")
		port         = flag.Int("port", 4444, "TCP port to listen on, [0, 65535]")
		size         = flag.String("size", "", "SIZE_X,SIZE_Y for a random board; mutually exclusive with --file")
		file         = flag.String("file", "", "path to a board file; mutually exclusive with --size")
		configPath   = flag.String("config", "", "optional YAML file of defaults, overridden by any flag set above")
		auditDBPath  = flag.String("audit-db", "", "optional sqlite file to record connection and move events")
		spectateAddr = flag.String("spectate-addr", "", "optional host:port to serve a read-only WebSocket board feed on")
	)
	flag.Usage = usage
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, *debug, *noDebug, *port, *size, *file, *configPath, *auditDBPath, *spectateAddr); err != nil {
		logger.Fatal("mineserver exiting", zap.Error(err))
	}
}

func run(logger *zap.Logger, debugFlag, noDebugFlag bool, port int, size, file, configPath, auditDBPath, spectateAddr string) error {
	var def config.Defaults
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		def = loaded
	}
	port = mergePort(port, isFlagSet("port"), def)
	if port < 0 || port > 65535 {
		usage()
		return fmt.Errorf("--port must be in [0, 65535], got %d", port)
	}

	debug := false
	if def.DebugSet {
		debug = def.Debug
	}
	if debugFlag {
		debug = true
	}
	if noDebugFlag {
		debug = false
	}

	effectiveSize := size
	if effectiveSize == "" && def.SizeX > 0 && def.SizeY > 0 {
		effectiveSize = fmt.Sprintf("%d,%d", def.SizeX, def.SizeY)
	}
	effectiveFile := file
	if effectiveFile == "" && def.File != "" {
		effectiveFile = def.File
	}

	if effectiveSize != "" && effectiveFile != "" {
		usage()
		return fmt.Errorf("--size and --file are mutually exclusive")
	}

	b, err := buildBoard(effectiveSize, effectiveFile)
	if err != nil {
		return err
	}

	auditSink := audit.NewNoop()
	if auditDBPath != "" {
		auditSink, err = audit.Open(auditDBPath, logger)
		if err != nil {
			return err
		}
	}
	defer auditSink.Close()

	var hub *spectate.Hub
	if spectateAddr != "" {
		hub = spectate.NewHub(logger)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("bind port %d: %w", port, err)
	}

	srv := server.New(listener, b, debug, server.Options{
		Logger:       logger,
		Audit:        auditSink,
		Spectate:     hub,
		SpectateAddr: spectateAddr,
	})
	logger.Info("mineserver listening",
		zap.Int("port", port),
		zap.Int("width", b.Width()),
		zap.Int("height", b.Height()),
		zap.Bool("debug", debug),
	)
	return srv.Serve()
}

func buildBoard(size, file string) (*board.Board, error) {
	switch {
	case file != "":
		return loader.FromFile(file)
	case size != "":
		w, h, err := parseSize(size)
		if err != nil {
			return nil, err
		}
		return loader.FromRandom(w, h, rand.New(rand.NewSource(rand.Int63())))
	default:
		return loader.FromRandom(defaultRandomSize, defaultRandomSize, rand.New(rand.NewSource(rand.Int63())))
	}
}

func parseSize(size string) (w, h int, err error) {
	parts := strings.Split(size, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("--size must be SIZE_X,SIZE_Y, got %q", size)
	}
	w, err = strconv.Atoi(parts[0])
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("--size: invalid SIZE_X %q", parts[0])
	}
	h, err = strconv.Atoi(parts[1])
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("--size: invalid SIZE_Y %q", parts[1])
	}
	return w, h, nil
}

// mergePort resolves --port vs. a config file's port: vs. the
// hardcoded flag default, in that precedence order. cliPort already
// carries the hardcoded default (4444) whenever the flag itself
// wasn't explicitly passed, so it is only overridden by the config
// file when the config file actually set a port of its own.
func mergePort(cliPort int, cliPortSet bool, def config.Defaults) int {
	if cliPortSet {
		return cliPort
	}
	if def.PortSet {
		return def.Port
	}
	return cliPort
}

func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

/*
Groupers starts a standalone debugserver process.

It loads a debugserver.Config from a TOML file (or built-in defaults if
none is given), starts listening, and shuts down gracefully on SIGINT or
SIGTERM. It registers no grammars of its own: a host process embeds
debugserver.Server directly and calls Registry.Register/RecordParse
itself; groupers exists only to run the introspection server as its own
binary when that embedding isn't wanted (e.g. a shared debug
environment reachable by several grammar-hosting processes over the
same history store).

Usage:

	groupers [flags]

The flags are:

	-v, --version
		Give the current version of grouper and then exit.

	-c, --config FILE
		Load server configuration from the given TOML file. If unset,
		debugserver.Config{}.FillDefaults() is used as-is.

	-b, --bind ADDRESS
		Override the bind address from the config file (or the
		default), e.g. "localhost:8573".
*/
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/dekarrin/grouper/debugserver"
	"github.com/dekarrin/grouper/internal/version"
)

const (
	ExitSuccess = iota
	ExitConfigError
	ExitServerError
)

var (
	returnCode  int
	flagVersion = pflag.BoolP("version", "v", false, "Gives the version info")
	configFile  = pflag.StringP("config", "c", "", "TOML config file to load; defaults are used if unset")
	bindAddress = pflag.StringP("bind", "b", "", "Override the configured bind address")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg := debugserver.Config{}
	if *configFile != "" {
		loaded, err := debugserver.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitConfigError
			return
		}
		cfg = loaded
	}
	if *bindAddress != "" {
		cfg.BindAddress = *bindAddress
	}

	srv, err := debugserver.New(cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitConfigError
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	serveErrCh := make(chan error, 1)
	go func() {
		log.Printf("groupers: listening on %s", cfg.FillDefaults().BindAddress)
		serveErrCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErrCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitServerError
		}
		return
	case sig := <-sigCh:
		log.Printf("groupers: received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: shutdown: %s\n", err.Error())
		returnCode = ExitServerError
	}
}

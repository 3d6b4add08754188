/*
Liposerver starts a liposerver instance and begins listening for new
connections.

Usage:

	liposerver [flags]

Once started, liposerver listens for HTTP requests against the /api/v1
endpoints (run, executions, auth/token) until killed.

The flags are:

	-v, --version
		Give the current version of liposerver and then exit.

	-c, --config FILE
		Load server configuration from the given TOML file. If not given,
		liposerver starts with built-in defaults: an in-memory execution
		store, a randomly generated (and therefore restart-invalidated)
		token secret, and an admin key of "password".

	-l, --listen LISTEN_ADDRESS
		Listen on the given address, overriding the config file's
		listen_address.
*/
package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/hnkNkm/Lipona/internal/version"
	"github.com/hnkNkm/Lipona/server"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of liposerver and then exit")
	flagConfig  = pflag.StringP("config", "c", "", "Load server configuration from the given TOML file")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (Lipona v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintln(os.Stderr, "Too many arguments.\nDo -h for help.")
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("FATAL could not load config: %s", err.Error())
	}

	if pflag.Lookup("listen").Changed {
		cfg.ListenAddress = *flagListen
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("FATAL could not start server: %s", err.Error())
	}

	log.Printf("INFO  Starting liposerver %s...", version.ServerCurrent)
	if err := srv.ServeForever(); err != nil {
		log.Fatalf("FATAL server exited: %s", err.Error())
	}
}

func loadConfig() (server.Config, error) {
	if *flagConfig != "" {
		return server.LoadConfig(*flagConfig)
	}

	log.Printf("WARN  No --config given; using generated token secret and an insecure default admin key 'password'")
	log.Printf("WARN  All tokens issued will become invalid at shutdown")

	secret := make([]byte, 64)
	if _, err := rand.Read(secret); err != nil {
		return server.Config{}, fmt.Errorf("generate token secret: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return server.Config{}, fmt.Errorf("hash default admin key: %w", err)
	}

	return server.Config{
		TokenSecret:  secret,
		AdminKeyHash: string(hash),
		DB:           server.Database{Type: server.DatabaseInMemory},
	}, nil
}

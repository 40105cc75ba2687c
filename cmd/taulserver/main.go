/*
Taulserver starts the grammar service and begins listening for HTTP
requests.

Usage:

	taulserver [flags]

Once started, the grammar service accepts POSTed spec binaries, compiles
and caches them as validated grammars, and runs parses against cached
grammars over REST. By default it listens on :8080 (all interfaces); this can be
changed with the --listen/-l flag or the TAUL_LISTEN_ADDRESS environment
variable.

If a token secret is not given via --secret/-s, --config, or the
TAUL_TOKEN_SECRET environment variable, one is generated at startup and
all bearer tokens issued become invalid as soon as the server shuts down.
This is fine for testing but must be given explicitly in production.

The flags are:

	-v, --version
		Give the current version and exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Defaults to TAUL_LISTEN_ADDRESS, and
		if that is unset, to ":8080".

	-c, --config FILE
		Load a TOML config file (see service.Config). Flags and env vars
		take precedence over values loaded from it.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing bearer tokens. Defaults to
		TAUL_TOKEN_SECRET, and if that is unset, a random secret is
		generated.

	-d, --data-dir DIR
		Directory the grammar cache's sqlite database lives in. Defaults
		to TAUL_DATA_DIR, and if that is unset, the current directory.
*/
package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/dekarrin/taul/internal/logging"
	"github.com/dekarrin/taul/internal/version"
	"github.com/dekarrin/taul/service"
	"github.com/dekarrin/taul/service/dao/sqlite"
	"github.com/spf13/pflag"
)

const (
	EnvListen  = "TAUL_LISTEN_ADDRESS"
	EnvSecret  = "TAUL_TOKEN_SECRET"
	EnvDataDir = "TAUL_DATA_DIR"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version and exit.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagConfig  = pflag.StringP("config", "c", "", "Load a TOML config file.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for signing bearer tokens.")
	flagDataDir = pflag.StringP("data-dir", "d", "", "Directory the grammar cache's database lives in.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("taulserver %s\n", version.Current)
		return
	}

	var cfg service.Config
	if *flagConfig != "" {
		var err error
		cfg, err = service.LoadConfig(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			os.Exit(1)
		}
	}

	if listenAddr := os.Getenv(EnvListen); listenAddr != "" {
		cfg.ListenAddress = listenAddr
	}
	if pflag.Lookup("listen").Changed {
		cfg.ListenAddress = *flagListen
	}

	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if pflag.Lookup("data-dir").Changed {
		cfg.DataDir = *flagDataDir
	}

	var secret []byte
	secretStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		secretStr = *flagSecret
	}
	if secretStr == "" {
		secretStr = cfg.TokenSecret
	}

	if secretStr != "" {
		secret = []byte(secretStr)
		for len(secret) < service.MinSecretSize {
			secret = append(secret, secret...)
		}
		if len(secret) > service.MaxSecretSize {
			secret = secret[:service.MaxSecretSize]
		}
	} else {
		secret = make([]byte, service.MaxSecretSize)
		if _, err := rand.Read(secret); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: could not generate token secret: %s\n", err.Error())
			os.Exit(1)
		}
		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
	}
	cfg.TokenSecret = string(secret)

	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: invalid config: %s\n", err.Error())
		os.Exit(1)
	}

	if err := cfg.EnsureDataDir(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: could not create data dir: %s\n", err.Error())
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: could not open grammar cache: %s\n", err.Error())
		os.Exit(1)
	}

	passwordHash, err := service.HashAdminPassword(cfg.AdminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: could not hash admin password: %s\n", err.Error())
		os.Exit(1)
	}

	logger := logging.Default()
	svc := service.New(store, logger, secret, passwordHash)
	svc.UnauthDelay = cfg.UnauthDelay()

	logger.Infof("Starting taul grammar service %s on %s...", version.Current, cfg.ListenAddress)
	if err := http.ListenAndServe(cfg.ListenAddress, svc); err != nil {
		log.Fatalf("FATAL server exited: %s", err.Error())
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/mjwhitta/cli"
)

var version = "0.1.0"

// Exit codes
const (
	ExitSuccess = iota
	ExitError
	ExitMissingArg
)

const (
	envValidationKey = "ASPXAUTH_VALIDATION_KEY"
	envDecryptionKey = "ASPXAUTH_DECRYPTION_KEY"
	envJWTSecret     = "ASPXAUTH_JWT_SECRET"
)

// Global flags
var flags cliFlags

type cliFlags struct {
	validationKey string
	decryptionKey string
	iv            string
	mode          string
	ticketVersion int
	ttl           string
	noExpiry      bool

	name       string
	customData string
	path       string
	persistent bool

	jwtSecret string
	jwtTTL    string

	keySize     int
	ops         int
	concurrency int

	verbose bool
}

func configure() {
	cli.Align = true
	cli.Authors = []string{"aspxauth authors"}
	cli.Banner = fmt.Sprintf("%s [OPTIONS] <command> [args...]", os.Args[0])
	cli.Info(
		"Encode and decode forms-authentication (.ASPXAUTH) cookies.",
		"",
		"Keys may be given as flags or through the "+envValidationKey,
		"and "+envDecryptionKey+" environment variables.",
	)
	cli.ExitStatus(
		"0 - Success",
		"1 - Error",
		"2 - Missing command",
	)

	cli.Flag(&flags.validationKey, "k", "validation-key", "", "Validation key (hex)")
	cli.Flag(&flags.decryptionKey, "d", "decryption-key", "", "Decryption key (hex, 32 bytes)")
	cli.Flag(&flags.iv, "i", "iv", "", "Decryption IV for legacy mode (hex, 16 bytes)")
	cli.Flag(&flags.mode, "m", "mode", "legacy", "Protection mode: legacy or dotnet45")
	cli.Flag(&flags.ticketVersion, "t", "ticket-version", 0, "Required ticket version (0 accepts any)")
	cli.Flag(&flags.ttl, "l", "ttl", "24h", "Lifetime of encoded tickets")
	cli.Flag(&flags.noExpiry, "x", "no-expiry", false, "Accept expired tickets on decode")
	cli.Flag(&flags.name, "n", "name", "", "Ticket name (encode)")
	cli.Flag(&flags.customData, "u", "custom-data", "", "Ticket user data (encode)")
	cli.Flag(&flags.path, "a", "path", "/", "Ticket cookie path (encode)")
	cli.Flag(&flags.persistent, "p", "persistent", false, "Mark the ticket persistent (encode)")
	cli.Flag(&flags.jwtSecret, "j", "jwt-secret", "", "HS256 secret for access tokens (token)")
	cli.Flag(&flags.jwtTTL, "e", "jwt-ttl", "5m", "Access token lifetime cap (token)")
	cli.Flag(&flags.keySize, "s", "size", 64, "Key size in bytes (keygen)")
	cli.Flag(&flags.ops, "o", "ops", 100000, "Operations per phase (bench)")
	cli.Flag(&flags.concurrency, "c", "concurrency", 64, "Concurrent workers (bench)")
	cli.Flag(&flags.verbose, "v", "verbose", false, "Log decode diagnostics to stderr")

	cli.Section("Commands",
		"  decode <hex>  Print the ticket inside a cookie\n",
		"  encode        Issue a cookie for --name\n",
		"  token <hex>   Mint a JWT access token from a cookie\n",
		"  keygen        Print a random key of --size bytes\n",
		"  bench         Measure encode and decode throughput\n",
		"  version       Print the version",
	)

	cli.Parse()
}

func main() {
	configure()

	if cli.NArg() == 0 {
		cli.Usage(ExitMissingArg)
	}

	command := cli.Arg(0)
	var args []string
	if cli.NArg() > 1 {
		args = cli.Args()[1:]
	}

	var err error
	switch command {
	case "decode":
		err = cmdDecode(os.Stdout, args)
	case "encode":
		err = cmdEncode(os.Stdout)
	case "token":
		err = cmdToken(os.Stdout, args)
	case "keygen":
		err = cmdKeygen(os.Stdout)
	case "bench":
		err = cmdBench(os.Stdout)
	case "version":
		fmt.Println(version)
	case "help":
		cli.Usage(ExitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		cli.Usage(ExitError)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

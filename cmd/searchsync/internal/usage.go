package internal

import (
	"fmt"
	"os"
)

const Version = "0.3.1"

// PrintUsage writes the command summary and available subcommands to stderr.
func PrintUsage() {
	fmt.Fprintf(os.Stderr, `searchsync - Relational to Search Index Synchronization

Version: %s

USAGE:
    searchsync [global options] <command> [command options]

GLOBAL OPTIONS:
    -config <path>
        Path to config file (default: ~/.searchsync/config/searchsync.yaml)

    -v, -version
        Show version information

    -h, -help
        Show this help message

COMMANDS:
    sync
        Run a synchronization pass (one-shot or continuous)

    bootstrap
        Create the search indices with their mappings

    health
        Check connectivity to the relational store, search engine and
        embedding service

EXAMPLES:
    # One-shot sync of all entity types
    searchsync sync

    # Continuous mode, one pass every 5 minutes
    searchsync sync -continuous -interval 5

    # Sync only items with a 30 minute lookback
    searchsync sync -entities item -lookback 30

    # Create indices (no-op for existing ones)
    searchsync bootstrap

    # Drop and recreate indices, requires a full resync afterwards
    searchsync bootstrap -recreate

For detailed help on each command, use:
    searchsync <command> -help
`, Version)
}

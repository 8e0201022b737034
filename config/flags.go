package config

import (
	"path/filepath"
	"time"

	"github.com/filefilego/txsign/client"
	"github.com/filefilego/txsign/common"
	"github.com/urfave/cli/v2"
)

// DefaultRPCEndpoint is the json-rpc endpoint of a local node.
const DefaultRPCEndpoint = "http://127.0.0.1:8545"

var (
	LogPathLine = &cli.BoolFlag{
		Name:  "log_path_line",
		Usage: "Logs include file path and line number",
	}

	LogLevelFlag = &cli.StringFlag{
		Name:  "log_level",
		Value: "info",
		Usage: "Logging level",
	}

	DataDirFlag = &cli.StringFlag{
		Name:  "data_dir",
		Value: common.DefaultDataDir(),
		Usage: "Data directory to store the journal of submitted transactions",
	}

	KeystoreDirFlag = &cli.StringFlag{
		Name:  "keystore_dir",
		Value: filepath.Join(common.DefaultDataDir(), "keystore"),
		Usage: "Keystore directory",
	}

	RPCEndpointFlag = &cli.StringFlag{
		Name:    "rpc",
		Aliases: []string{"rpc_endpoint"},
		Value:   DefaultRPCEndpoint,
		Usage:   "JSON-RPC endpoint of the node",
		EnvVars: []string{"TXSIGN_RPC"},
	}

	RPCTimeoutFlag = &cli.DurationFlag{
		Name:  "rpc_timeout",
		Value: 30 * time.Second,
		Usage: "Time limit of the network queries and the submission of a transaction",
	}

	RPCMaxRetriesFlag = &cli.Uint64Flag{
		Name:  "rpc_max_retries",
		Value: client.DefaultMaxRetries,
		Usage: "Retries of a request that failed in transport",
	}

	ChainIDFlag = &cli.Uint64Flag{
		Name:  "chain_id",
		Usage: "Chain id for EIP-155 signing, 0 signs without replay protection, queried from the node when not set",
	}
)

// AppFlags are the global flags of the application.
var AppFlags = []cli.Flag{
	LogPathLine,
	LogLevelFlag,
	DataDirFlag,
	KeystoreDirFlag,
	RPCEndpointFlag,
	RPCTimeoutFlag,
	RPCMaxRetriesFlag,
	ChainIDFlag,
}

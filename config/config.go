package config

import (
	"path/filepath"
	"time"

	"github.com/filefilego/txsign/client"
	"github.com/filefilego/txsign/common"
	"github.com/urfave/cli/v2"
)

// Config represents the configuration.
type Config struct {
	Global global
	RPC    rpc
	Chain  chain
}

type global struct {
	LogPathLine bool
	LogLevel    string
	DataDir     string
	KeystoreDir string
}

type rpc struct {
	Endpoint   string
	Timeout    time.Duration
	MaxRetries uint64
}

type chain struct {
	ChainID uint64
	// ChainIDSet is false when the chain id should be queried from the node.
	ChainIDSet bool
}

// New creates a new configuration.
func New(ctx *cli.Context) *Config {
	conf := &Config{
		Global: global{
			LogLevel: "info",
			DataDir:  common.DefaultDataDir(),
		},
		RPC: rpc{
			Endpoint:   DefaultRPCEndpoint,
			Timeout:    30 * time.Second,
			MaxRetries: client.DefaultMaxRetries,
		},
	}
	conf.applyFlags(ctx)
	return conf
}

// JournalDir is the leveldb directory of the submitted transactions.
func (conf *Config) JournalDir() string {
	return filepath.Join(conf.Global.DataDir, "journal")
}

func (conf *Config) applyFlags(ctx *cli.Context) {
	if ctx.IsSet(DataDirFlag.Name) {
		conf.Global.DataDir = ctx.String(DataDirFlag.Name)
	}

	// the keystore follows the data directory unless set
	conf.Global.KeystoreDir = filepath.Join(conf.Global.DataDir, "keystore")
	if ctx.IsSet(KeystoreDirFlag.Name) {
		conf.Global.KeystoreDir = ctx.String(KeystoreDirFlag.Name)
	}

	if ctx.IsSet(LogPathLine.Name) {
		conf.Global.LogPathLine = ctx.Bool(LogPathLine.Name)
	}

	if ctx.IsSet(LogLevelFlag.Name) {
		conf.Global.LogLevel = ctx.String(LogLevelFlag.Name)
	}

	// RPC
	if ctx.IsSet(RPCEndpointFlag.Name) {
		conf.RPC.Endpoint = ctx.String(RPCEndpointFlag.Name)
	}

	if ctx.IsSet(RPCTimeoutFlag.Name) {
		conf.RPC.Timeout = ctx.Duration(RPCTimeoutFlag.Name)
	}

	if ctx.IsSet(RPCMaxRetriesFlag.Name) {
		conf.RPC.MaxRetries = ctx.Uint64(RPCMaxRetriesFlag.Name)
	}

	// Chain
	if ctx.IsSet(ChainIDFlag.Name) {
		conf.Chain.ChainID = ctx.Uint64(ChainIDFlag.Name)
		conf.Chain.ChainIDSet = true
	}
}

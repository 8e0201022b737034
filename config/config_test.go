package config

import (
	"flag"
	"path/filepath"
	"testing"
	"time"

	"github.com/filefilego/txsign/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestNew(t *testing.T) {
	ctx := cli.NewContext(cli.NewApp(), &flag.FlagSet{}, &cli.Context{})
	config := New(ctx)
	assert.NotNil(t, config)

	conf := &Config{
		Global: global{
			LogLevel:    "info",
			DataDir:     common.DefaultDataDir(),
			KeystoreDir: filepath.Join(common.DefaultDataDir(), "keystore"),
		},
		RPC: rpc{
			Endpoint:   "http://127.0.0.1:8545",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
		},
	}
	assert.Equal(t, conf, config)
	assert.Equal(t, filepath.Join(common.DefaultDataDir(), "journal"), config.JournalDir())
}

func TestNewWithFlags(t *testing.T) {
	t.Parallel()
	cases := map[string]struct {
		args  []string
		check func(t *testing.T, conf *Config)
	}{
		"defaults of registered flags": {
			args: []string{},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, DefaultRPCEndpoint, conf.RPC.Endpoint)
				assert.False(t, conf.Chain.ChainIDSet)
				assert.Equal(t, "info", conf.Global.LogLevel)
			},
		},
		"data dir moves the keystore": {
			args: []string{"--data_dir", "/tmp/txsign"},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, "/tmp/txsign", conf.Global.DataDir)
				assert.Equal(t, filepath.Join("/tmp/txsign", "keystore"), conf.Global.KeystoreDir)
				assert.Equal(t, filepath.Join("/tmp/txsign", "journal"), conf.JournalDir())
			},
		},
		"explicit keystore dir": {
			args: []string{"--data_dir", "/tmp/txsign", "--keystore_dir", "/secure/keys"},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, "/secure/keys", conf.Global.KeystoreDir)
			},
		},
		"rpc settings": {
			args: []string{"--rpc", "https://rpc.example.org", "--rpc_timeout", "5s", "--rpc_max_retries", "0"},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, "https://rpc.example.org", conf.RPC.Endpoint)
				assert.Equal(t, 5*time.Second, conf.RPC.Timeout)
				assert.Equal(t, uint64(0), conf.RPC.MaxRetries)
			},
		},
		"chain id zero is set": {
			args: []string{"--chain_id", "0"},
			check: func(t *testing.T, conf *Config) {
				assert.True(t, conf.Chain.ChainIDSet)
				assert.Equal(t, uint64(0), conf.Chain.ChainID)
			},
		},
		"logging": {
			args: []string{"--log_level", "debug", "--log_path_line"},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, "debug", conf.Global.LogLevel)
				assert.True(t, conf.Global.LogPathLine)
			},
		},
	}

	for name, tt := range cases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			set := flag.NewFlagSet("test", flag.ContinueOnError)
			for _, f := range AppFlags {
				require.NoError(t, f.Apply(set))
			}
			require.NoError(t, set.Parse(tt.args))
			ctx := cli.NewContext(cli.NewApp(), set, nil)
			tt.check(t, New(ctx))
		})
	}
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/filefilego/txsign/config"
	"github.com/filefilego/txsign/keystore"
	"github.com/filefilego/txsign/wallet"
	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"
)

var (
	AppHelpTemplate = `NAME:
	{{.Name}} - {{.Usage}}
	USAGE:
	{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}
	{{if len .Authors}}
	AUTHOR:
	{{range .Authors}}{{ . }}{{end}}
	{{end}}{{if .Version}}
	VERSION:
	  {{.Version}}
	  {{end}}{{if .Commands}}
	COMMANDS:
	{{range .Commands}}{{if not .HideHelp}}   {{join .Names ", "}}{{ "\t"}}{{.Usage}}{{ "\n" }}{{end}}{{end}}{{end}}{{if .VisibleFlags}}
	GLOBAL OPTIONS:
	{{range .VisibleFlags}}{{.}}
	{{end}}{{end}}{{if .Copyright }}
	COPYRIGHT:
	   {{.Copyright}}
	{{end}}
	`

	passwordFileFlag = &cli.StringFlag{
		Name:  "password_file",
		Usage: "Read the passphrase from the first line of a file",
	}

	AccountCommand = &cli.Command{
		Name:     "account",
		Usage:    "Manage accounts",
		Category: "Account",
		Description: `
					Manage the keys of the keystore directory`,
		Subcommands: []*cli.Command{
			{
				Name:   "new",
				Usage:  "new <passphrase>",
				Action: CreateAccount,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kdf",
						Value: "scrypt",
						Usage: "Key derivation function, scrypt or pbkdf2",
					},
					&cli.BoolFlag{
						Name:  "light",
						Usage: "Use a low memory scrypt cost",
					},
					passwordFileFlag,
				},
				Description: `
				Creates a new encrypted key in the keystore directory`,
			},
			{
				Name:   "list",
				Usage:  "list",
				Action: ListAccounts,
				Flags:  []cli.Flag{},
				Description: `
				Lists the addresses of the keystore directory`,
			},
			{
				Name:   "inspect",
				Usage:  "inspect <keyfile> [passphrase]",
				Action: InspectAccount,
				Flags:  []cli.Flag{passwordFileFlag},
				Description: `
				Unlocks a key file and prints its address`,
			},
			{
				Name:   "balance",
				Usage:  "balance <address>",
				Action: GetBalance,
				Flags:  []cli.Flag{},
				Description: `
				Prints the balance and the next nonce of an address`,
			},
		},
	}

	TransactionCommand = &cli.Command{
		Name:     "tx",
		Usage:    "Sign and send transactions",
		Category: "Transaction",
		Description: `
					Build, sign, submit and inspect legacy transactions`,
		Subcommands: []*cli.Command{
			{
				Name:      "new",
				Usage:     "new <keyfile> [passphrase]",
				ArgsUsage: "<keyfile.json|keyfile.toml> [passphrase]",
				Action:    SendTransaction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "to",
						Usage: "Recipient address, omitted for contract creation",
					},
					&cli.Uint64Flag{
						Name:  "nonce",
						Usage: "Nonce, queried from the node when not set",
					},
					&cli.StringFlag{
						Name:  "value",
						Usage: "Amount to transfer, e.g. 1.5ether, 20gwei, 0x10 or a wei integer",
					},
					&cli.StringFlag{
						Name:  "calldata",
						Usage: "Hex encoded call data or contract code",
					},
					&cli.StringFlag{
						Name:  "gasprice",
						Usage: "Gas price, queried from the node when not set",
					},
					&cli.Uint64Flag{
						Name:  "gaslimit",
						Usage: "Gas limit, estimated by the node when not set",
					},
					&cli.BoolFlag{
						Name:  "dry_run",
						Usage: "Print the signed transaction without sending it",
					},
					passwordFileFlag,
				},
				Description: `
				Signs a transaction with a key file and sends it to the node`,
			},
			{
				Name:   "decode",
				Usage:  "decode <0xraw>",
				Action: DecodeTransaction,
				Flags:  []cli.Flag{},
				Description: `
				Decodes a signed transaction and recovers its sender`,
			},
			{
				Name:   "history",
				Usage:  "history",
				Action: ListHistory,
				Flags:  []cli.Flag{},
				Description: `
				Lists the transactions sent from this machine`,
			},
			{
				Name:   "receipt",
				Usage:  "receipt <0xhash>",
				Action: GetReceipt,
				Flags:  []cli.Flag{},
				Description: `
				Prints the receipt of a mined transaction`,
			},
		},
	}
)

// CreateAccount creates a new encrypted key.
func CreateAccount(ctx *cli.Context) error {
	conf := config.New(ctx)
	opts, err := encryptOptions(ctx.String("kdf"), ctx.Bool("light"))
	if err != nil {
		return err
	}

	passphrase, err := readPassphrase(ctx, 0)
	if err != nil {
		return err
	}
	defer zero(passphrase)

	ks, err := keystore.New(conf.Global.KeystoreDir)
	if err != nil {
		return fmt.Errorf("failed to setup keystore: %w", err)
	}

	s := newSpinner("Encrypting key ")
	s.Start()
	path, address, err := ks.CreateKey(passphrase, opts)
	s.Stop()
	if err != nil {
		return fmt.Errorf("failed to create key: %w", err)
	}

	fmt.Printf("Created key %s in %s\n", address.Hex(), path)
	return nil
}

// ListAccounts lists the addresses of the keystore directory.
func ListAccounts(ctx *cli.Context) error {
	conf := config.New(ctx)
	ks, err := keystore.New(conf.Global.KeystoreDir)
	if err != nil {
		return fmt.Errorf("failed to setup keystore: %w", err)
	}

	addresses, err := ks.ListKeys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	if len(addresses) == 0 {
		fmt.Printf("No keys in %s\n", conf.Global.KeystoreDir)
		return nil
	}

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("#", "Address", "Key file")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	for i, address := range addresses {
		path, err := ks.FindKeyFile(address)
		if err != nil {
			return fmt.Errorf("failed to find key file: %w", err)
		}
		tbl.AddRow(i+1, address.Hex(), path)
	}
	tbl.Print()
	fmt.Printf("\n")

	return nil
}

// InspectAccount unlocks a key file and prints its address.
func InspectAccount(ctx *cli.Context) error {
	keyfilePath := ctx.Args().First()
	if keyfilePath == "" {
		return errors.New("key file is required")
	}

	kind, err := wallet.KindFromPath(keyfilePath)
	if err != nil {
		return err
	}

	keyfile, err := os.ReadFile(keyfilePath)
	if err != nil {
		return fmt.Errorf("failed to read key file: %w", err)
	}

	kdf := "-"
	var passphrase []byte
	if kind == wallet.Encrypted {
		w, err := keystore.Decode(keyfile)
		if err != nil {
			return fmt.Errorf("failed to decode key file: %w", err)
		}
		kdf = string(w.KDF)

		passphrase, err = readPassphrase(ctx, 1)
		if err != nil {
			return err
		}
		defer zero(passphrase)
	}

	key, err := wallet.RecoverKey(kind, keyfile, passphrase)
	if err != nil {
		return fmt.Errorf("failed to unlock key file: %w", err)
	}
	address := key.Address()
	key.Zero()

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("Address", "Kind", "KDF")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	tbl.AddRow(address.Hex(), kind.String(), kdf)
	tbl.Print()
	fmt.Printf("\n")

	return nil
}

// encryptOptions maps the kdf flags to the encryption cost.
func encryptOptions(kdf string, light bool) (keystore.EncryptOptions, error) {
	switch strings.ToLower(kdf) {
	case "", string(keystore.KDFScrypt):
		if light {
			return keystore.LightScrypt, nil
		}
		return keystore.StandardScrypt, nil
	case string(keystore.KDFPBKDF2):
		if light {
			return keystore.EncryptOptions{}, errors.New("light is only supported with scrypt")
		}
		return keystore.StandardPBKDF2, nil
	default:
		return keystore.EncryptOptions{}, fmt.Errorf("unsupported kdf %q: expected scrypt or pbkdf2", kdf)
	}
}

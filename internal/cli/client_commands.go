package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"time"

	"github.com/briandowns/spinner"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fatih/color"
	"github.com/filefilego/txsign/client"
	"github.com/filefilego/txsign/common"
	"github.com/filefilego/txsign/common/currency"
	"github.com/filefilego/txsign/config"
	"github.com/filefilego/txsign/database"
	"github.com/filefilego/txsign/journal"
	"github.com/filefilego/txsign/transaction"
	"github.com/filefilego/txsign/wallet"
	"github.com/rodaine/table"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// chainIDQuerier queries the chain id of the node.
type chainIDQuerier interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// GetBalance prints the balance and the next nonce of an address.
func GetBalance(ctx *cli.Context) error {
	conf := config.New(ctx)
	address := ctx.Args().First()
	if !ethcommon.IsHexAddress(address) {
		return fmt.Errorf("invalid address %q", address)
	}

	rpcClient, err := newClient(conf)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx.Context, conf.RPC.Timeout)
	defer cancel()

	addr := ethcommon.HexToAddress(address)
	balance, err := rpcClient.Balance(timeoutCtx, addr)
	if err != nil {
		return fmt.Errorf("failed to get address balance: %w", err)
	}
	nonce, err := rpcClient.PendingNonce(timeoutCtx, addr)
	if err != nil {
		return fmt.Errorf("failed to get address nonce: %w", err)
	}

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("Balance", "Balance hex", "Next Nonce")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	tbl.AddRow(currency.FormatEther(balance.ToInt())+" ETH", balance.String(), nonce)
	tbl.Print()
	fmt.Printf("\n")

	return nil
}

// SendTransaction signs a transaction with a key file and sends it to the node.
func SendTransaction(ctx *cli.Context) error {
	conf := config.New(ctx)
	keyfilePath := ctx.Args().First()
	if keyfilePath == "" {
		return errors.New("key file is required")
	}

	kind, err := wallet.KindFromPath(keyfilePath)
	if err != nil {
		return err
	}

	fields, err := partialFields(ctx)
	if err != nil {
		return err
	}

	keyfile, err := os.ReadFile(keyfilePath)
	if err != nil {
		return fmt.Errorf("failed to read key file: %w", err)
	}

	var passphrase []byte
	if kind == wallet.Encrypted {
		passphrase, err = readPassphrase(ctx, 1)
		if err != nil {
			return err
		}
	}
	key, err := wallet.RecoverKey(kind, keyfile, passphrase)
	zero(passphrase)
	if err != nil {
		return fmt.Errorf("failed to unlock key file: %w", err)
	}
	// BuildAndSign zeroes the key, this covers the early returns.
	defer key.Zero()
	from := key.Address()

	rpcClient, err := newClient(conf)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx.Context, conf.RPC.Timeout)
	defer cancel()

	chainID, err := resolveChainID(timeoutCtx, conf, rpcClient)
	if err != nil {
		return err
	}

	s := newSpinner("Signing transaction ")
	s.Start()
	tx, err := wallet.BuildAndSign(timeoutCtx, &key, fields, rpcClient, transaction.AssembleOptions{ChainID: chainID})
	s.Stop()
	if err != nil {
		return err
	}

	raw, err := tx.Encode()
	if err != nil {
		return err
	}
	hash, err := tx.Hash()
	if err != nil {
		return err
	}

	printTransaction(hash, from, tx)
	fmt.Printf("Raw: %s\n\n", hexutil.Encode(raw))

	if ctx.Bool("dry_run") {
		return nil
	}

	s = newSpinner("Sending transaction ")
	s.Start()
	sentHash, err := wallet.Submit(timeoutCtx, rpcClient, tx)
	s.Stop()
	if err != nil {
		return err
	}

	if err := recordTransaction(conf, tx, from); err != nil {
		log.Warnf("transaction %s was sent but not journaled: %v", sentHash.Hex(), err)
	}

	fmt.Printf("Transaction sent: %s\n", sentHash.Hex())
	return nil
}

// DecodeTransaction decodes a signed transaction and recovers its sender.
func DecodeTransaction(ctx *cli.Context) error {
	raw, err := hexutil.Decode(ctx.Args().First())
	if err != nil {
		return fmt.Errorf("failed to decode raw transaction: %w", err)
	}

	tx, err := transaction.DecodeSigned(raw)
	if err != nil {
		return err
	}
	from, err := tx.Sender()
	if err != nil {
		return err
	}
	hash, err := tx.Hash()
	if err != nil {
		return err
	}

	printTransaction(hash, from, tx)
	return nil
}

// ListHistory lists the transactions sent from this machine.
func ListHistory(ctx *cli.Context) error {
	conf := config.New(ctx)
	if !common.DirExists(conf.JournalDir()) {
		fmt.Printf("No transactions were sent\n")
		return nil
	}

	db, err := database.Open(conf.JournalDir())
	if err != nil {
		return err
	}
	defer db.Close()

	j, err := journal.New(db)
	if err != nil {
		return err
	}
	records, err := j.List()
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("Hash", "Sent", "From", "To", "Nonce", "Value")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	for _, rec := range records {
		value := big.NewInt(0)
		if rec.Value != nil {
			value = rec.Value.ToInt()
		}
		tbl.AddRow(rec.Hash.Hex(), time.Unix(rec.SubmittedAt, 0).Format(time.RFC3339), rec.From.Hex(), recipient(rec.To), uint64(rec.Nonce), currency.FormatEther(value)+" ETH")
	}
	tbl.Print()
	fmt.Printf("\n")

	return nil
}

// GetReceipt prints the receipt of a mined transaction.
func GetReceipt(ctx *cli.Context) error {
	conf := config.New(ctx)
	hashHex := ctx.Args().First()
	hashBytes, err := hexutil.Decode(hashHex)
	if err != nil || len(hashBytes) != ethcommon.HashLength {
		return fmt.Errorf("invalid transaction hash %q", hashHex)
	}

	rpcClient, err := newClient(conf)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx.Context, conf.RPC.Timeout)
	defer cancel()

	receipt, err := rpcClient.TransactionReceipt(timeoutCtx, ethcommon.BytesToHash(hashBytes))
	if errors.Is(err, client.ErrReceiptNotFound) {
		fmt.Printf("Transaction %s is pending or unknown\n", hashHex)
		return nil
	}
	if err != nil {
		return err
	}

	status := "failed"
	if receipt.Succeeded() {
		status = "success"
	}
	contract := "-"
	if receipt.ContractAddress != nil {
		contract = receipt.ContractAddress.Hex()
	}

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("Status", "Block", "Gas used", "Contract")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	tbl.AddRow(status, uint64(receipt.BlockNumber), uint64(receipt.GasUsed), contract)
	tbl.Print()
	fmt.Printf("\n")

	return nil
}

func printTransaction(hash ethcommon.Hash, from ethcommon.Address, tx *transaction.SignedTx) {
	chainID := "-"
	if tx.ChainID != nil {
		chainID = tx.ChainID.String()
	}

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("Field", "Value")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	tbl.AddRow("Hash", hash.Hex())
	tbl.AddRow("From", from.Hex())
	tbl.AddRow("To", recipient(tx.To))
	tbl.AddRow("Nonce", tx.Nonce)
	tbl.AddRow("Gas price", tx.GasPrice.String()+" wei")
	tbl.AddRow("Gas limit", tx.GasLimit)
	tbl.AddRow("Value", currency.FormatEther(tx.Value)+" ETH")
	tbl.AddRow("Data", hexutil.Encode(tx.Data))
	tbl.AddRow("Chain id", chainID)
	tbl.Print()
	fmt.Printf("\n")
}

func recipient(to *ethcommon.Address) string {
	if to == nil {
		return "contract creation"
	}
	return to.Hex()
}

func recordTransaction(conf *config.Config, tx *transaction.SignedTx, from ethcommon.Address) error {
	if err := common.CreateDirectory(conf.Global.DataDir); err != nil {
		return err
	}
	db, err := database.Open(conf.JournalDir())
	if err != nil {
		return err
	}
	defer db.Close()

	j, err := journal.New(db)
	if err != nil {
		return err
	}
	rec, err := journal.NewRecord(tx, from, time.Now())
	if err != nil {
		return err
	}
	return j.Add(rec)
}

// partialFields reads the transaction fields of the tx new flags.
// Unset flags are left nil so they are resolved from the network.
func partialFields(ctx *cli.Context) (transaction.PartialFields, error) {
	p := transaction.PartialFields{}

	if ctx.IsSet("to") {
		to := ctx.String("to")
		if !ethcommon.IsHexAddress(to) {
			return p, fmt.Errorf("invalid recipient address %q", to)
		}
		addr := ethcommon.HexToAddress(to)
		p.To = &addr
	}

	if ctx.IsSet("nonce") {
		p.Nonce = transaction.Uint64(ctx.Uint64("nonce"))
	}

	if ctx.IsSet("value") {
		v, err := currency.ParseAmount(ctx.String("value"))
		if err != nil {
			return p, fmt.Errorf("failed to parse value: %w", err)
		}
		p.Value = v
	}

	if ctx.IsSet("calldata") {
		data, err := hexutil.Decode(ctx.String("calldata"))
		if err != nil {
			return p, fmt.Errorf("failed to decode calldata: %w", err)
		}
		p.Data = data
	}

	if ctx.IsSet("gasprice") {
		v, err := currency.ParseAmount(ctx.String("gasprice"))
		if err != nil {
			return p, fmt.Errorf("failed to parse gas price: %w", err)
		}
		p.GasPrice = v
	}

	if ctx.IsSet("gaslimit") {
		p.GasLimit = transaction.Uint64(ctx.Uint64("gaslimit"))
	}

	if p.To == nil && len(p.Data) == 0 {
		return p, errors.New("either a recipient or calldata is required")
	}

	return p, nil
}

// resolveChainID returns the configured chain id, or the node's when none is configured.
// A nil result signs without replay protection.
func resolveChainID(ctx context.Context, conf *config.Config, q chainIDQuerier) (*big.Int, error) {
	if conf.Chain.ChainIDSet {
		if conf.Chain.ChainID == 0 {
			return nil, nil
		}
		return new(big.Int).SetUint64(conf.Chain.ChainID), nil
	}

	chainID, err := q.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	if chainID.Sign() == 0 {
		return nil, nil
	}
	log.Debugf("using chain id %s of the node", chainID.String())
	return chainID, nil
}

func newClient(conf *config.Config) (*client.Client, error) {
	rpcClient, err := client.New(conf.RPC.Endpoint, &http.Client{Timeout: conf.RPC.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to setup client: %w", err)
	}
	rpcClient.SetMaxRetries(conf.RPC.MaxRetries)
	return rpcClient, nil
}

// readPassphrase reads the passphrase from the password_file flag, the argument at index or stdin.
func readPassphrase(ctx *cli.Context, index int) ([]byte, error) {
	if ctx.IsSet("password_file") {
		passphrase, err := common.ReadFirstLine(ctx.String("password_file"))
		if err != nil {
			return nil, fmt.Errorf("failed to read password file: %w", err)
		}
		if len(passphrase) == 0 {
			return nil, errors.New("passphrase is empty")
		}
		return passphrase, nil
	}

	if arg := ctx.Args().Get(index); arg != "" {
		return []byte(arg), nil
	}

	return promptPassphrase()
}

// promptPassphrase reads the passphrase without echo, or a line when stdin is not a terminal.
func promptPassphrase() ([]byte, error) {
	var passphrase []byte
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Passphrase: ")
		defer fmt.Fprintln(os.Stderr)

		raw, err := term.ReadPassword(fd)
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
		passphrase = raw
	} else {
		input := bufio.NewScanner(os.Stdin)
		if input.Scan() {
			passphrase = bytes.Clone(input.Bytes())
		}
	}

	if len(passphrase) == 0 {
		return nil, errors.New("passphrase is empty")
	}
	return passphrase, nil
}

func newSpinner(prefix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[43], 100*time.Millisecond)
	_ = s.Color("green")
	s.Prefix = prefix
	return s
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

package currency

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Wei is the smallest unit.
func Wei() *big.Int {
	return big.NewInt(1)
}

// GWei is 10^9 wei.
func GWei() *big.Int {
	return big.NewInt(1000000000)
}

// Ether is 10^18 wei.
func Ether() *big.Int {
	return big.NewInt(1000000000000000000)
}

// units are matched in order, longer suffixes first.
var units = []struct {
	suffix string
	value  *big.Int
}{
	{suffix: "ether", value: Ether()},
	{suffix: "gwei", value: GWei()},
	{suffix: "eth", value: Ether()},
	{suffix: "wei", value: Wei()},
}

// ParseAmount parses an amount into wei.
// Accepted forms are "0x" hex, a plain integer in wei, or a decimal with
// a unit suffix such as "1.5ether" or "20gwei".
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return nil, errors.New("amount is empty")
	}
	if strings.HasPrefix(s, "0x") {
		v, err := hexutil.DecodeBig(s)
		if err != nil {
			return nil, fmt.Errorf("failed to decode hex amount: %w", err)
		}
		return v, nil
	}

	unit := Wei()
	number := s
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			number = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			unit = u.value
			break
		}
	}

	r, ok := new(big.Rat).SetString(number)
	if !ok || strings.ContainsAny(number, "/eE+") {
		return nil, fmt.Errorf("amount %q is not a number", s)
	}
	if r.Sign() < 0 {
		return nil, fmt.Errorf("amount %q is negative", s)
	}
	r.Mul(r, new(big.Rat).SetInt(unit))
	if !r.IsInt() {
		return nil, fmt.Errorf("amount %q is not a whole number of wei", s)
	}
	return new(big.Int).Set(r.Num()), nil
}

// FormatEther formats wei as ether with up to 18 decimals and no trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	neg := wei.Sign() < 0
	abs := new(big.Int).Abs(wei)
	whole, frac := new(big.Int).QuoRem(abs, Ether(), new(big.Int))

	out := whole.String()
	if frac.Sign() != 0 {
		fracStr := frac.String()
		fracStr = strings.Repeat("0", 18-len(fracStr)) + fracStr
		out += "." + strings.TrimRight(fracStr, "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

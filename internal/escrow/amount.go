package escrow

import (
	"math/big"

	"gitlab.com/distributed_lab/logan/v3/errors"
)

func amountOf(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() <= 0 {
		return nil, errors.Errorf("amount %q is not a positive decimal integer", s)
	}
	return v, nil
}

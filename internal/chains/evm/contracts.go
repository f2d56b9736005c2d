package evm

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// The escrow contracts are external collaborators with a fixed ABI; only the
// methods this service calls are bound.

const escrowFactoryABI = `[
	{"type":"function","name":"addressOfEscrow","stateMutability":"view","inputs":[{"name":"orderHash","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"deposit","stateMutability":"nonpayable","inputs":[{"name":"orderHash","type":"bytes32"},{"name":"hashlock","type":"bytes32"},{"name":"token","type":"address"},{"name":"amount","type":"uint256"},{"name":"extension","type":"bytes"},{"name":"signature","type":"bytes"}],"outputs":[]}
]`

const escrowABI = `[
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"secret","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"cancel","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"balance","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"hashlock","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"expiresAt","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

type EscrowFactory struct {
	address  common.Address
	contract *bind.BoundContract
}

func NewEscrowFactory(address common.Address, backend bind.ContractBackend) (*EscrowFactory, error) {
	parsed, err := abi.JSON(strings.NewReader(escrowFactoryABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse escrow factory ABI")
	}
	return &EscrowFactory{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

func (f *EscrowFactory) AddressOfEscrow(opts *bind.CallOpts, orderHash [32]byte) (common.Address, error) {
	var out []interface{}
	err := f.contract.Call(opts, &out, "addressOfEscrow", orderHash)
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (f *EscrowFactory) Deposit(opts *bind.TransactOpts, orderHash, hashlock [32]byte, token common.Address, amount *big.Int, extension, signature []byte) (*types.Transaction, error) {
	return f.contract.Transact(opts, "deposit", orderHash, hashlock, token, amount, extension, signature)
}

type Escrow struct {
	address  common.Address
	contract *bind.BoundContract
}

func NewEscrow(address common.Address, backend bind.ContractBackend) (*Escrow, error) {
	parsed, err := abi.JSON(strings.NewReader(escrowABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse escrow ABI")
	}
	return &Escrow{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

func (e *Escrow) Withdraw(opts *bind.TransactOpts, secret [32]byte) (*types.Transaction, error) {
	return e.contract.Transact(opts, "withdraw", secret)
}

func (e *Escrow) Cancel(opts *bind.TransactOpts) (*types.Transaction, error) {
	return e.contract.Transact(opts, "cancel")
}

func (e *Escrow) Balance(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := e.contract.Call(opts, &out, "balance")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (e *Escrow) Hashlock(opts *bind.CallOpts) ([32]byte, error) {
	var out []interface{}
	err := e.contract.Call(opts, &out, "hashlock")
	if err != nil {
		return [32]byte{}, err
	}
	return *abi.ConvertType(out[0], new([32]byte)).(*[32]byte), nil
}

func (e *Escrow) ExpiresAt(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := e.contract.Call(opts, &out, "expiresAt")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

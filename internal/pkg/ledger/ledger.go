package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/anicoll/sensor-rewards/internal/pkg/config"
)

// tokenABI is the slice of the SensorToken contract this service touches.
const tokenABI = `[
	{"type":"function","name":"reward","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"}],"outputs":[]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

// Client talks to the reward token contract. Credit sends a signed
// transaction, BalanceOf and Decimals are read-only calls. All outbound calls
// carry a bounded timeout.
type Client struct {
	eth         *ethclient.Client
	contract    *bind.BoundContract
	transactOpt *bind.TransactOpts
	callTimeout time.Duration
	sendTimeout time.Duration

	// transactions are serialised so nonce assignment stays monotonic.
	sendMu sync.Mutex

	decimalsMu     sync.Mutex
	decimals       uint8
	decimalsCached bool
}

func New(ctx context.Context, cfg *config.LedgerConfig) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger rpc: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse operator key: %w", err)
	}
	transactOpt, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(tokenABI))
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}

	return &Client{
		eth:         eth,
		contract:    bind.NewBoundContract(common.HexToAddress(cfg.ContractAddress), parsed, eth, eth, eth),
		transactOpt: transactOpt,
		callTimeout: cfg.CallTimeout,
		sendTimeout: cfg.SendTimeout,
	}, nil
}

// Credit sends one reward transaction for the given wallet and returns the
// transaction hash. It does not wait for the transaction to be mined.
func (c *Client) Credit(ctx context.Context, walletAddress string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	opts := *c.transactOpt
	opts.Context = ctx
	tx, err := c.contract.Transact(&opts, "reward", common.HexToAddress(walletAddress))
	if err != nil {
		return "", fmt.Errorf("credit wallet %s: %w", walletAddress, err)
	}
	return tx.Hash().Hex(), nil
}

// BalanceOf returns the raw on-ledger balance in base units.
func (c *Client) BalanceOf(ctx context.Context, walletAddress string) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", common.HexToAddress(walletAddress)); err != nil {
		return nil, fmt.Errorf("balance of %s: %w", walletAddress, err)
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balance of %s: unexpected return type %T", walletAddress, out[0])
	}
	return balance, nil
}

// Decimals reads the token's base-unit scale. The contract value is immutable
// so the first successful read is cached for the process lifetime.
func (c *Client) Decimals(ctx context.Context) (uint8, error) {
	c.decimalsMu.Lock()
	defer c.decimalsMu.Unlock()
	if c.decimalsCached {
		return c.decimals, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "decimals"); err != nil {
		return 0, fmt.Errorf("read token decimals: %w", err)
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("read token decimals: unexpected return type %T", out[0])
	}
	c.decimals = decimals
	c.decimalsCached = true
	return c.decimals, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

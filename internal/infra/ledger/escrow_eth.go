package ledger

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// コントラクトは固定のインターフェースを持つブラックボックス:
// constructor(customer, amount) / pay() / isPaid() / assignCourier(courier) / confirmDelivery()
// confirmDelivery内部で80/20（owner/courier）に分配される。
const escrowABI = `[
  {"inputs":[{"internalType":"address","name":"customer","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"}],"stateMutability":"nonpayable","type":"constructor"},
  {"inputs":[],"name":"pay","outputs":[],"stateMutability":"payable","type":"function"},
  {"inputs":[],"name":"isPaid","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"courier","type":"address"}],"name":"assignCourier","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[],"name":"confirmDelivery","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

const escrowTxGasLimit = 200000

type Config struct {
	RPCURL       string
	OwnerKeyHex  string
	BytecodePath string        // solcが吐いたbin（hex文字列）
	ChainID      int64         // 0ならノードに問い合わせる
	CallTimeout  time.Duration // 全チェーン呼び出しの上限
}

// EthEscrowClientはエスクローコントラクトへのowner側の窓口。
// 状態は持たない。ビジネス判断はすべて呼び出し側。
type EthEscrowClient struct {
	client   *ethclient.Client
	abi      abi.ABI
	bytecode []byte
	ownerKey *ecdsa.PrivateKey
	chainID  *big.Int
	timeout  time.Duration
}

func NewEthEscrowClient(cfg Config) (*EthEscrowClient, error) {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}

	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("ledger: dial %s: %w", cfg.RPCURL, err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.OwnerKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("ledger: owner key: %w", err)
	}

	parsed, err := ParseEscrowABI()
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(cfg.BytecodePath)
	if err != nil {
		return nil, fmt.Errorf("ledger: bytecode: %w", err)
	}
	bytecode := common.FromHex(strings.TrimSpace(string(raw)))
	if len(bytecode) == 0 {
		return nil, errors.New("ledger: bytecode file is empty")
	}

	chainID := big.NewInt(cfg.ChainID)
	if cfg.ChainID == 0 {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.CallTimeout)
		defer cancel()
		chainID, err = client.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("ledger: chain id: %w", err)
		}
	}

	return &EthEscrowClient{
		client:   client,
		abi:      parsed,
		bytecode: bytecode,
		ownerKey: key,
		chainID:  chainID,
		timeout:  cfg.CallTimeout,
	}, nil
}

func ParseEscrowABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(escrowABI))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("ledger: abi: %w", err)
	}
	return parsed, nil
}

func (c *EthEscrowClient) Enabled() bool {
	return true
}

func (c *EthEscrowClient) ValidAddress(addr string) bool {
	return common.IsHexAddress(addr)
}

func (c *EthEscrowClient) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *EthEscrowClient) transactor(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.ownerKey, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("ledger: transactor: %w", err)
	}
	opts.Context = ctx
	opts.GasLimit = escrowTxGasLimit
	return opts, nil
}

func (c *EthEscrowClient) bound(contractAddress string) *bind.BoundContract {
	addr := common.HexToAddress(contractAddress)
	return bind.NewBoundContract(addr, c.abi, c.client, c.client, c.client)
}

// マイニングまで待って、receiptの成否も見る
func (c *EthEscrowClient) waitMined(ctx context.Context, tx *types.Transaction) error {
	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return fmt.Errorf("ledger: wait mined: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("ledger: transaction %s reverted", tx.Hash().Hex())
	}
	return nil
}

func (c *EthEscrowClient) Deploy(ctx context.Context, customerAddress string, amount *big.Int) (string, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	opts, err := c.transactor(ctx)
	if err != nil {
		return "", err
	}
	// deployはconstructor実行の分だけ余計に食う
	opts.GasLimit = 3 * escrowTxGasLimit

	addr, tx, _, err := bind.DeployContract(opts, c.abi, c.bytecode, c.client,
		common.HexToAddress(customerAddress), amount)
	if err != nil {
		return "", fmt.Errorf("ledger: deploy: %w", err)
	}
	if err := c.waitMined(ctx, tx); err != nil {
		return "", err
	}
	return addr.Hex(), nil
}

func (c *EthEscrowClient) IsPaid(ctx context.Context, contractAddress string) (bool, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	var out []interface{}
	err := c.bound(contractAddress).Call(&bind.CallOpts{Context: ctx}, &out, "isPaid")
	if err != nil {
		return false, fmt.Errorf("ledger: isPaid: %w", err)
	}
	if len(out) != 1 {
		return false, errors.New("ledger: isPaid: unexpected result")
	}
	paid, ok := out[0].(bool)
	if !ok {
		return false, errors.New("ledger: isPaid: unexpected result type")
	}
	return paid, nil
}

func (c *EthEscrowClient) AssignCourier(ctx context.Context, contractAddress string, courierAddress string) (string, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	opts, err := c.transactor(ctx)
	if err != nil {
		return "", err
	}
	tx, err := c.bound(contractAddress).Transact(opts, "assignCourier", common.HexToAddress(courierAddress))
	if err != nil {
		return "", fmt.Errorf("ledger: assignCourier: %w", err)
	}
	if err := c.waitMined(ctx, tx); err != nil {
		return "", err
	}
	return tx.Hash().Hex(), nil
}

func (c *EthEscrowClient) ConfirmDelivery(ctx context.Context, contractAddress string) (string, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	opts, err := c.transactor(ctx)
	if err != nil {
		return "", err
	}
	tx, err := c.bound(contractAddress).Transact(opts, "confirmDelivery")
	if err != nil {
		return "", fmt.Errorf("ledger: confirmDelivery: %w", err)
	}
	if err := c.waitMined(ctx, tx); err != nil {
		return "", err
	}
	return tx.Hash().Hex(), nil
}

// 未署名のpay()トランザクション。署名も送信も顧客側の仕事。
type paymentInvoice struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Value    string `json:"value"`
	Data     string `json:"data"`
	Nonce    uint64 `json:"nonce"`
	Gas      uint64 `json:"gas"`
	GasPrice string `json:"gasPrice"`
	ChainID  string `json:"chainId"`
}

func (c *EthEscrowClient) BuildPaymentTx(ctx context.Context, contractAddress string, payerAddress string, amount *big.Int) (json.RawMessage, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	data, err := c.abi.Pack("pay")
	if err != nil {
		return nil, fmt.Errorf("ledger: pack pay: %w", err)
	}

	payer := common.HexToAddress(payerAddress)
	nonce, err := c.client.PendingNonceAt(ctx, payer)
	if err != nil {
		return nil, fmt.Errorf("ledger: nonce: %w", err)
	}
	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: gas price: %w", err)
	}

	inv := paymentInvoice{
		From:     payer.Hex(),
		To:       common.HexToAddress(contractAddress).Hex(),
		Value:    amount.String(),
		Data:     hexutil.Encode(data),
		Nonce:    nonce,
		Gas:      escrowTxGasLimit,
		GasPrice: gasPrice.String(),
		ChainID:  c.chainID.String(),
	}
	return json.Marshal(inv)
}

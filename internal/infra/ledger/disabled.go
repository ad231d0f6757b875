package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"regexp"
)

var ErrDisabled = errors.New("ledger: escrow is not configured")

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// エスクロー設定なしで動かすときの実装。
// アドレスの形式チェックだけはできる。チェーン操作は全部エラー。
type DisabledClient struct{}

func NewDisabledClient() DisabledClient {
	return DisabledClient{}
}

func (DisabledClient) Enabled() bool {
	return false
}

func (DisabledClient) ValidAddress(addr string) bool {
	return addressPattern.MatchString(addr)
}

func (DisabledClient) Deploy(ctx context.Context, customerAddress string, amount *big.Int) (string, error) {
	return "", ErrDisabled
}

func (DisabledClient) IsPaid(ctx context.Context, contractAddress string) (bool, error) {
	return false, ErrDisabled
}

func (DisabledClient) AssignCourier(ctx context.Context, contractAddress string, courierAddress string) (string, error) {
	return "", ErrDisabled
}

func (DisabledClient) ConfirmDelivery(ctx context.Context, contractAddress string) (string, error) {
	return "", ErrDisabled
}

func (DisabledClient) BuildPaymentTx(ctx context.Context, contractAddress string, payerAddress string, amount *big.Int) (json.RawMessage, error) {
	return nil, ErrDisabled
}

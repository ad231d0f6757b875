package usecase

import (
	"context"
	"encoding/json"
	"math"
	"math/big"
)

// 外部エスクロー台帳への薄い窓口。呼び出しはどれも遅い・失敗すると思って扱う。
type EscrowClient interface {
	// 設定がそろっていてチェーンに出られるか
	Enabled() bool
	ValidAddress(addr string) bool

	// 顧客と金額を固定してデポジット用コントラクトを開く。戻りはコントラクトアドレス。
	Deploy(ctx context.Context, customerAddress string, amount *big.Int) (string, error)
	IsPaid(ctx context.Context, contractAddress string) (bool, error)

	// owner署名のトランザクション。戻りはtxハッシュ。
	AssignCourier(ctx context.Context, contractAddress string, courierAddress string) (string, error)
	ConfirmDelivery(ctx context.Context, contractAddress string) (string, error)

	// 顧客が外で署名する未署名のpay()トランザクション
	BuildPaymentTx(ctx context.Context, contractAddress string, payerAddress string, amount *big.Int) (json.RawMessage, error)
}

// 台帳の最小単位へ変換（価格×100）
func ledgerUnits(price float64) *big.Int {
	return big.NewInt(int64(math.Round(price * 100)))
}

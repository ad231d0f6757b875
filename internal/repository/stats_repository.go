package repository

import "context"

// 集計の生データ。整形・並び替えはusecase側。
type ProductStatRow struct {
	Name    string
	Sold    int64
	Waiting int64
}

type CategoryStatRow struct {
	Name string
	Sold int64
}

// 読み取り専用のレポート系クエリ
type StatsRepository interface {
	// 注文実績のある商品ごとのsold/waiting数量
	ProductStats(ctx context.Context) ([]ProductStatRow, error)
	// 全カテゴリのCOMPLETE注文数量（0件のカテゴリも含む）
	CategoryStats(ctx context.Context) ([]CategoryStatRow, error)
}

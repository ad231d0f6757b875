package usecase

import (
	"context"
	"net/http"
	"sort"

	repo "shop/internal/repository"
)

type StatsUsecase struct {
	stats repo.StatsRepository
}

func NewStatsUsecase(stats repo.StatsRepository) *StatsUsecase {
	return &StatsUsecase{stats: stats}
}

type ProductStatOutput struct {
	Name    string `json:"name"`
	Sold    int64  `json:"sold"`
	Waiting int64  `json:"waiting"`
}

// 注文実績のある商品ごとのsold/waiting。実績ゼロの商品は出さない。
func (u *StatsUsecase) ProductStatistics(ctx context.Context) ([]ProductStatOutput, error) {
	rows, err := u.stats.ProductStats(ctx)
	if err != nil {
		return []ProductStatOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]ProductStatOutput, 0, len(rows))
	for _, row := range rows {
		if row.Sold == 0 && row.Waiting == 0 {
			continue
		}
		outs = append(outs, ProductStatOutput{
			Name:    row.Name,
			Sold:    row.Sold,
			Waiting: row.Waiting,
		})
	}
	return outs, nil
}

// カテゴリ名の一覧。売上数量の多い順、同数なら名前の昇順。0のカテゴリも入る。
func (u *StatsUsecase) CategoryStatistics(ctx context.Context) ([]string, error) {
	rows, err := u.stats.CategoryStats(ctx)
	if err != nil {
		return []string{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Sold != rows[j].Sold {
			return rows[i].Sold > rows[j].Sold
		}
		return rows[i].Name < rows[j].Name
	})

	outs := make([]string, 0, len(rows))
	for _, row := range rows {
		outs = append(outs, row.Name)
	}
	return outs, nil
}

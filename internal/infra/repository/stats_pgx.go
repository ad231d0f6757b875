package repository

import (
	"context"

	repo "shop/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// レポート系はORMを通さず生SQLで取る
type StatsPgxRepository struct {
	pool *pgxpool.Pool
}

func NewStatsPgxRepository(pool *pgxpool.Pool) *StatsPgxRepository {
	return &StatsPgxRepository{pool: pool}
}

// 注文実績のある商品だけが対象（INNER JOIN）。
// sold=COMPLETE注文の数量、waiting=CREATED/PENDING注文の数量。
func (r *StatsPgxRepository) ProductStats(ctx context.Context) ([]repo.ProductStatRow, error) {
	const q = `
SELECT p.name,
       COALESCE(SUM(CASE WHEN o.status = 'COMPLETE' THEN oi.quantity ELSE 0 END), 0) AS sold,
       COALESCE(SUM(CASE WHEN o.status IN ('CREATED', 'PENDING') THEN oi.quantity ELSE 0 END), 0) AS waiting
FROM products p
JOIN order_items oi ON oi.product_id = p.id
JOIN orders o ON o.id = oi.order_id
GROUP BY p.id, p.name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repo.ProductStatRow
	for rows.Next() {
		var row repo.ProductStatRow
		if err := rows.Scan(&row.Name, &row.Sold, &row.Waiting); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// 全カテゴリが対象。売れていないカテゴリは0で入る（LEFT JOIN）。
func (r *StatsPgxRepository) CategoryStats(ctx context.Context) ([]repo.CategoryStatRow, error) {
	const q = `
SELECT c.name,
       COALESCE(SUM(CASE WHEN o.status = 'COMPLETE' THEN oi.quantity ELSE 0 END), 0) AS sold
FROM categories c
LEFT JOIN product_categories pc ON pc.category_id = c.id
LEFT JOIN order_items oi ON oi.product_id = pc.product_id
LEFT JOIN orders o ON o.id = oi.order_id
GROUP BY c.id, c.name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repo.CategoryStatRow
	for rows.Next() {
		var row repo.CategoryStatRow
		if err := rows.Scan(&row.Name, &row.Sold); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

type CatalogUsecase struct {
	tx         repo.TransactionManager
	products   repo.ProductRepository
	categories repo.CategoryRepository
}

func NewCatalogUsecase(
	tx repo.TransactionManager,
	products repo.ProductRepository,
	categories repo.CategoryRepository,
) *CatalogUsecase {
	return &CatalogUsecase{
		tx:         tx,
		products:   products,
		categories: categories,
	}
}

type SearchProductOutput struct {
	Categories []string `json:"categories"`
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
}

type SearchOutput struct {
	Categories []string              `json:"categories"`
	Products   []SearchProductOutput `json:"products"`
}

// 商品名・カテゴリ名の部分一致検索
func (u *CatalogUsecase) Search(ctx context.Context, name string, category string) (SearchOutput, error) {
	products, err := u.products.Search(ctx, name, category)
	if err != nil {
		return SearchOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	categories, err := u.categories.Search(ctx, category, name)
	if err != nil {
		return SearchOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := SearchOutput{
		Categories: make([]string, 0, len(categories)),
		Products:   make([]SearchProductOutput, 0, len(products)),
	}
	for _, c := range categories {
		out.Categories = append(out.Categories, c.Name)
	}
	for _, p := range products {
		cats, err := u.categories.ListNamesByProductID(ctx, p.ID)
		if err != nil {
			return SearchOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out.Products = append(out.Products, SearchProductOutput{
			Categories: cats,
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price,
		})
	}
	return out, nil
}

type importEntry struct {
	name       string
	price      float64
	categories []string
}

// カタログの一括投入。行形式: cat1|cat2,name,price
// 1行でもだめなら全部捨てる。行番号は0始まり。
func (u *CatalogUsecase) Import(ctx context.Context, file io.Reader) error {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var entries []importEntry
	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Incorrect number of values on line %d.", line))
		}

		if len(record) != 3 {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Incorrect number of values on line %d.", line))
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil || price <= 0 {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Incorrect price on line %d.", line))
		}

		var categories []string
		for _, c := range strings.Split(record[0], "|") {
			if name := strings.TrimSpace(c); name != "" {
				categories = append(categories, name)
			}
		}

		entries = append(entries, importEntry{
			name:       strings.TrimSpace(record[1]),
			price:      price,
			categories: categories,
		})
		line++
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//既存商品と名前がかぶったら何も入れない
		for _, e := range entries {
			_, found, err := r.Products().FindByName(ctx, e.name)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if found {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Product %s already exists.", e.name))
			}
		}

		for _, e := range entries {
			p, err := r.Products().Create(ctx, model.Product{Name: e.name, Price: e.price})
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			for _, catName := range e.categories {
				cat, found, err := r.Categories().FindByName(ctx, catName)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if !found {
					cat, err = r.Categories().Create(ctx, model.Category{Name: catName})
					if err != nil {
						return NewHTTPError(http.StatusInternalServerError, "db error")
					}
				}
				if err := r.Categories().Link(ctx, p.ID, cat.ID); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}
		return nil
	})
}

package catalog_repo

import (
	"stockwise/internal/domain/catalogs/shop"
	"stockwise/internal/infrastructure/storage/postgres"
)

const shopTable = "cat_shops"

// ShopRepo implements shop.Repository.
type ShopRepo struct {
	*BaseCatalogRepo[*shop.Shop]
}

var _ shop.Repository = (*ShopRepo)(nil)

// NewShopRepo creates a new shop repository.
func NewShopRepo(txm *postgres.TxManager) *ShopRepo {
	return &ShopRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*shop.Shop](
			txm,
			shopTable,
			"shop",
			postgres.ExtractDBColumns[shop.Shop](),
			func() *shop.Shop { return &shop.Shop{} },
		),
	}
}

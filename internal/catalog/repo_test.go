package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/internal/testdb"
	"github.com/evergreenfarmers/storefront/pkg/db/models"
	"github.com/evergreenfarmers/storefront/pkg/enums"
)

type catalogFixture struct {
	conn       *gorm.DB
	repo       *Repository
	seeds      *models.Category
	livestock  *models.Category
	vegetables *models.SubCategory
	maize      *models.Product
	kale       *models.Product
	tomato     *models.Product
	feed       *models.Product
	hidden     *models.Product
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	conn := testdb.Open(t)
	fx := &catalogFixture{conn: conn, repo: NewRepository(conn)}

	fx.seeds = testdb.Category(t, conn, "Seeds")
	fx.livestock = testdb.Category(t, conn, "Livestock")
	fx.vegetables = testdb.SubCategory(t, conn, fx.seeds, "Vegetable Seeds")
	fruits := testdb.SubCategory(t, conn, fx.seeds, "Fruit Seedlings")

	fx.maize = testdb.Product(t, conn, fx.seeds, "Hybrid Maize", "300", testdb.Featured())
	fx.kale = testdb.Product(t, conn, fx.seeds, "Sukuma Wiki Kale", "150",
		testdb.InSubCategory(fx.vegetables), testdb.Organic(), testdb.WithDiscount("90"))
	fx.tomato = testdb.Product(t, conn, fx.seeds, "Tomato Anna F1", "250",
		testdb.InSubCategory(fruits), testdb.WithStock(0))
	fx.feed = testdb.Product(t, conn, fx.livestock, "Dairy Meal 70kg", "2800", testdb.WithStock(5))
	fx.hidden = testdb.Product(t, conn, fx.seeds, "Old Maize Stock", "50", testdb.Inactive())

	brand := &models.Brand{Name: "Kenya Seed", IsActive: true}
	require.NoError(t, conn.Create(brand).Error)
	require.NoError(t, conn.Model(&models.Product{}).Where("id = ?", fx.maize.ID).UpdateColumn("brand_id", brand.ID).Error)

	tag := &models.Tag{Name: "Drought Tolerant", IsActive: true}
	require.NoError(t, conn.Create(tag).Error)
	require.NoError(t, conn.Model(fx.feed).Association("Tags").Append(tag))

	return fx
}

func names(rows []models.Product) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Name)
	}
	return out
}

func TestListProductsExcludesInactive(t *testing.T) {
	fx := newCatalogFixture(t)

	rows, page, err := fx.repo.ListProducts(context.Background(), Filter{Page: 1}, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.TotalItems)
	assert.NotContains(t, names(rows), "Old Maize Stock")
	assert.Equal(t, "Hybrid Maize", rows[0].Name, "featured products lead the default order")
	require.NotNil(t, rows[0].Category)
}

func TestListProductsFilters(t *testing.T) {
	fx := newCatalogFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"category", Filter{Category: "livestock"}, []string{"Dairy Meal 70kg"}},
		{"subcategory", Filter{SubCategory: fx.vegetables.Slug}, []string{"Sukuma Wiki Kale"}},
		{"brand", Filter{Brand: "kenya-seed"}, []string{"Hybrid Maize"}},
		{"tag", Filter{Tag: "drought-tolerant"}, []string{"Dairy Meal 70kg"}},
		{"organic", Filter{Organic: true}, []string{"Sukuma Wiki Kale"}},
		{"stock", Filter{Stock: enums.StockStatusOutOfStock}, []string{"Tomato Anna F1"}},
		{"query on name", Filter{Query: "MAIZE"}, []string{"Hybrid Maize"}},
		{"query on brand", Filter{Query: "kenya"}, []string{"Hybrid Maize"}},
		{"query on tag", Filter{Query: "drought"}, []string{"Dairy Meal 70kg"}},
		{"query on subcategory", Filter{Query: "vegetable"}, []string{"Sukuma Wiki Kale"}},
		{"literal percent", Filter{Query: "%"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.filter.Sort = SortName
			rows, _, err := fx.repo.ListProducts(ctx, tc.filter, 12)
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(rows))
		})
	}
}

func TestListProductsPriceFilterUsesSellingPrice(t *testing.T) {
	fx := newCatalogFixture(t)
	f := ParseFilter(map[string][]string{"max_price": {"100"}, "sort": {"price_low"}})

	rows, _, err := fx.repo.ListProducts(context.Background(), f, 12)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sukuma Wiki Kale"}, names(rows))
}

func TestListProductsSortsBySellingPrice(t *testing.T) {
	fx := newCatalogFixture(t)

	rows, _, err := fx.repo.ListProducts(context.Background(), Filter{Sort: SortPriceLow}, 12)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sukuma Wiki Kale", "Tomato Anna F1", "Hybrid Maize", "Dairy Meal 70kg"}, names(rows))

	rows, _, err = fx.repo.ListProducts(context.Background(), Filter{Sort: SortStockLow}, 12)
	require.NoError(t, err)
	assert.Equal(t, "Tomato Anna F1", rows[0].Name)
}

func TestListProductsClampsPage(t *testing.T) {
	fx := newCatalogFixture(t)

	rows, page, err := fx.repo.ListProducts(context.Background(), Filter{Page: 40, Sort: SortName}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.Equal(t, []string{"Tomato Anna F1"}, names(rows))

	rows, page, err = fx.repo.ListProducts(context.Background(), Filter{Query: "nothing matches"}, 3)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 1, page.Number)
}

func TestSearchMatchesCategoryName(t *testing.T) {
	fx := newCatalogFixture(t)

	rows, err := fx.repo.Search(context.Background(), "livestock", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dairy Meal 70kg"}, names(rows))
}

func TestListSectionOnlyPurchasable(t *testing.T) {
	fx := newCatalogFixture(t)
	ctx := context.Background()

	rows, err := fx.repo.ListSection(ctx, SectionFruits, 8)
	require.NoError(t, err)
	assert.Empty(t, rows, "out of stock products are left off the homepage")

	rows, err = fx.repo.ListSection(ctx, SectionVegetables, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sukuma Wiki Kale"}, names(rows))

	testdb.Review(t, fx.conn, fx.feed, 5, true)
	testdb.Review(t, fx.conn, fx.maize, 3, true)
	testdb.Review(t, fx.conn, fx.kale, 5, false)
	rows, err = fx.repo.ListSection(ctx, SectionTopRated, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dairy Meal 70kg", "Hybrid Maize"}, names(rows))
}

func TestFacetsCountActiveProducts(t *testing.T) {
	fx := newCatalogFixture(t)
	ctx := context.Background()

	categories, err := fx.repo.CategoriesWithCounts(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Livestock", categories[0].Name)
	assert.Equal(t, int64(1), categories[0].ProductCount)
	assert.Equal(t, int64(3), categories[1].ProductCount)

	subs, err := fx.repo.SubCategoryFacets(ctx, &fx.seeds.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	subs, err = fx.repo.SubCategoryFacets(ctx, &fx.livestock.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	brands, err := fx.repo.BrandFacets(ctx)
	require.NoError(t, err)
	require.Len(t, brands, 1)
	assert.Equal(t, int64(1), brands[0].ProductCount)

	tags, err := fx.repo.TagFacets(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, int64(1), tags[0].ProductCount)

	bounds, err := fx.repo.PriceBounds(ctx)
	require.NoError(t, err)
	assert.True(t, bounds.Min.Decimal.Equal(fx.kale.DiscountPrice.Decimal))
	assert.Equal(t, "2800", bounds.Max.Decimal.String())
}

func TestFindActiveBySlug(t *testing.T) {
	fx := newCatalogFixture(t)
	ctx := context.Background()

	product, err := fx.repo.FindActiveBySlug(ctx, fx.kale.Slug)
	require.NoError(t, err)
	assert.Equal(t, fx.kale.ID, product.ID)
	require.NotNil(t, product.SubCategory)

	_, err = fx.repo.FindActiveBySlug(ctx, fx.hidden.Slug)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	related, err := fx.repo.Related(ctx, product, 4)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Hybrid Maize", "Tomato Anna F1"}, names(related))
}

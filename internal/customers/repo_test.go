package customers

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evergreenfarmers/storefront/internal/testdb"
	"github.com/evergreenfarmers/storefront/pkg/db/models"
	"github.com/evergreenfarmers/storefront/pkg/enums"
)

func TestUpsertByEmailCreatesThenUpdates(t *testing.T) {
	repo := NewRepository(testdb.Open(t))
	ctx := context.Background()

	created, err := repo.UpsertByEmail(ctx, &models.Customer{
		FirstName:    "Wanjiru",
		LastName:     "Kamau",
		Email:        "Wanjiru@Example.com",
		Phone:        "0712345678",
		AddressLine1: "Plot 4, Limuru Road",
		City:         "Kiambu",
		FarmName:     "Green Acres",
		FarmSize:     decimal.NewNullDecimal(decimal.NewFromInt(5)),
	})
	require.NoError(t, err)
	assert.Equal(t, "wanjiru@example.com", created.Email)
	assert.Equal(t, enums.CustomerTypeIndividual, created.CustomerType)
	assert.True(t, created.IsActive)

	updated, err := repo.UpsertByEmail(ctx, &models.Customer{
		FirstName:    "Wanjiru",
		LastName:     "Njoroge",
		Email:        "wanjiru@example.com ",
		Phone:        "0799999999",
		AddressLine1: "Plot 9, Limuru Road",
		CustomerType: enums.CustomerTypeCooperative,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Njoroge", updated.LastName)
	assert.Equal(t, "0799999999", updated.Phone)
	assert.Equal(t, "Kiambu", updated.City, "blank optional fields keep the stored value")
	assert.Equal(t, "Green Acres", updated.FarmName)
	assert.Equal(t, enums.CustomerTypeCooperative, updated.CustomerType)

	stored, err := repo.FindByEmail(ctx, "WANJIRU@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Plot 9, Limuru Road", stored.AddressLine1)
}

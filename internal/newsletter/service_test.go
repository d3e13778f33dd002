package newsletter

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evergreenfarmers/storefront/internal/testdb"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/logger"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(testdb.Open(t))
	svc, err := NewService(repo, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	require.NoError(t, err)
	return svc, repo
}

func TestSubscribeIsIdempotentAndReactivates(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	outcome, err := svc.Subscribe(ctx, SubscribeInput{Email: "Farmer@Example.com", Name: "Amina"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSubscribed, outcome)

	outcome, err = svc.Subscribe(ctx, SubscribeInput{Email: "farmer@example.com"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadySubscribed, outcome)

	require.NoError(t, svc.Unsubscribe(ctx, UnsubscribeInput{Email: "farmer@example.com"}))
	sub, err := repo.FindByEmail(ctx, "farmer@example.com")
	require.NoError(t, err)
	assert.False(t, sub.IsActive)

	outcome, err = svc.Subscribe(ctx, SubscribeInput{Email: "farmer@example.com"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeReactivated, outcome)
	sub, err = repo.FindByEmail(ctx, "farmer@example.com")
	require.NoError(t, err)
	assert.True(t, sub.IsActive)
	assert.Equal(t, "Amina", sub.Name, "a blank name keeps the stored one")
}

func TestUnsubscribeUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Unsubscribe(context.Background(), UnsubscribeInput{Email: "nobody@example.com"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSubscribeRejectsBadEmail(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Subscribe(context.Background(), SubscribeInput{Email: "not-an-email"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidInput))
}

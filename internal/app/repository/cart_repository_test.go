package repository

import (
	"testing"

	"github.com/jshan/storefront-backend/internal/app/model"
	"github.com/jshan/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartRepositoryTest(t *testing.T) (CartRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewCartRepository(testDB), testDB
}

func seedUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Test User",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func TestCartRepository_Create_DuplicateLineRejected(t *testing.T) {
	cartRepo, testDB := setupCartRepositoryTest(t)

	user := seedUser(t, testDB, "buyer@example.com")
	product := seedProduct(t, testDB, 10, true)

	require.NoError(t, cartRepo.Create(&model.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  1,
	}))

	// The unique index holds even when the service's read-then-create
	// check was raced past
	err := cartRepo.Create(&model.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  2,
	})
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	items, err := cartRepo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartRepository_Create_AfterRemovalAllowed(t *testing.T) {
	cartRepo, testDB := setupCartRepositoryTest(t)

	user := seedUser(t, testDB, "buyer@example.com")
	product := seedProduct(t, testDB, 10, true)

	first := &model.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, cartRepo.Create(first))
	require.NoError(t, cartRepo.Delete(first.ID))

	// A soft-deleted row must not occupy the unique slot
	require.NoError(t, cartRepo.Create(&model.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  3,
	}))

	items, err := cartRepo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestCartRepository_Create_SameProductDifferentUsers(t *testing.T) {
	cartRepo, testDB := setupCartRepositoryTest(t)

	alice := seedUser(t, testDB, "alice@example.com")
	bob := seedUser(t, testDB, "bob@example.com")
	product := seedProduct(t, testDB, 10, true)

	require.NoError(t, cartRepo.Create(&model.CartItem{UserID: alice.ID, ProductID: product.ID, Quantity: 1}))
	require.NoError(t, cartRepo.Create(&model.CartItem{UserID: bob.ID, ProductID: product.ID, Quantity: 1}))
}

func TestWishlistRepository_Create_DuplicateEntryRejected(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	wishlistRepo := NewWishlistRepository(testDB)

	user := seedUser(t, testDB, "wisher@example.com")
	product := seedProduct(t, testDB, 10, true)

	require.NoError(t, wishlistRepo.Create(&model.WishlistItem{
		UserID:    user.ID,
		ProductID: product.ID,
	}))

	err = wishlistRepo.Create(&model.WishlistItem{
		UserID:    user.ID,
		ProductID: product.ID,
	})
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	// Removal frees the slot for a later re-add
	require.NoError(t, wishlistRepo.Delete(user.ID, product.ID))
	require.NoError(t, wishlistRepo.Create(&model.WishlistItem{
		UserID:    user.ID,
		ProductID: product.ID,
	}))
}

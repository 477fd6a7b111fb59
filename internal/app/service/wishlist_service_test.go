package service

import (
	"testing"

	"github.com/jshan/storefront-backend/internal/app/repository"
	"github.com/jshan/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupWishlistServiceTest(t *testing.T) (WishlistService, CartService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	stockRepo := repository.NewStockRepository(testDB)
	wishlistRepo := repository.NewWishlistRepository(testDB)

	cartService := NewCartService(cartRepo, stockRepo)
	wishlistService := NewWishlistService(wishlistRepo, cartRepo, stockRepo, cartService, testDB)
	return wishlistService, cartService, testDB
}

func TestWishlistService_AddToWishlist_Success(t *testing.T) {
	wishlistService, _, testDB := setupWishlistServiceTest(t)

	user := createTestUser(t, testDB, "wisher@example.com")
	product := createTestProduct(t, testDB, "Widget", 1000, 10)

	item, err := wishlistService.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, item.ProductID)

	items, err := wishlistService.GetUserWishlist(user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestWishlistService_AddToWishlist_Duplicate(t *testing.T) {
	wishlistService, _, testDB := setupWishlistServiceTest(t)

	user := createTestUser(t, testDB, "wisher@example.com")
	product := createTestProduct(t, testDB, "Widget", 1000, 10)

	_, err := wishlistService.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)

	_, err = wishlistService.AddToWishlist(user.ID, product.ID)
	assert.ErrorIs(t, err, ErrWishlistItemAlreadyExists)

	items, err := wishlistService.GetUserWishlist(user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestWishlistService_AddToWishlist_OutOfStockAllowed(t *testing.T) {
	wishlistService, _, testDB := setupWishlistServiceTest(t)

	user := createTestUser(t, testDB, "wisher@example.com")
	product := createTestProduct(t, testDB, "Sold Out", 1000, 0)

	// Wishlisting has no stock constraint
	_, err := wishlistService.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)
}

func TestWishlistService_AddToWishlist_ProductNotFound(t *testing.T) {
	wishlistService, _, testDB := setupWishlistServiceTest(t)

	user := createTestUser(t, testDB, "wisher@example.com")

	_, err := wishlistService.AddToWishlist(user.ID, 9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestWishlistService_RemoveFromWishlist(t *testing.T) {
	wishlistService, _, testDB := setupWishlistServiceTest(t)

	user := createTestUser(t, testDB, "wisher@example.com")
	product := createTestProduct(t, testDB, "Widget", 1000, 10)

	_, err := wishlistService.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)

	require.NoError(t, wishlistService.RemoveFromWishlist(user.ID, product.ID))

	err = wishlistService.RemoveFromWishlist(user.ID, product.ID)
	assert.ErrorIs(t, err, ErrWishlistItemNotFound)
}

func TestWishlistService_MoveToCart_Success(t *testing.T) {
	wishlistService, _, testDB := setupWishlistServiceTest(t)

	user := createTestUser(t, testDB, "wisher@example.com")
	product := createTestProduct(t, testDB, "Widget", 1000, 10)

	entry, err := wishlistService.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)

	cartItem, err := wishlistService.MoveToCart(user.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, cartItem.ProductID)
	assert.Equal(t, 1, cartItem.Quantity)

	wishlist, err := wishlistService.GetUserWishlist(user.ID)
	require.NoError(t, err)
	assert.Empty(t, wishlist)
}

func TestWishlistService_MoveToCart_MergesExistingCartLine(t *testing.T) {
	wishlistService, cartService, testDB := setupWishlistServiceTest(t)

	user := createTestUser(t, testDB, "wisher@example.com")
	product := createTestProduct(t, testDB, "Widget", 1000, 10)

	_, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)
	entry, err := wishlistService.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)

	cartItem, err := wishlistService.MoveToCart(user.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, cartItem.Quantity)

	cart, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Len(t, cart, 1)
}

func TestWishlistService_MoveToCart_OutOfStockKeepsEntry(t *testing.T) {
	wishlistService, cartService, testDB := setupWishlistServiceTest(t)

	user := createTestUser(t, testDB, "wisher@example.com")
	product := createTestProduct(t, testDB, "Sold Out", 1000, 0)

	entry, err := wishlistService.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)

	_, err = wishlistService.MoveToCart(user.ID, entry.ID)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// The blocked move leaves both sides untouched
	wishlist, err := wishlistService.GetUserWishlist(user.ID)
	require.NoError(t, err)
	assert.Len(t, wishlist, 1)

	cart, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestWishlistService_MoveToCart_ForeignEntryInvisible(t *testing.T) {
	wishlistService, _, testDB := setupWishlistServiceTest(t)

	alice := createTestUser(t, testDB, "alice@example.com")
	bob := createTestUser(t, testDB, "bob@example.com")
	product := createTestProduct(t, testDB, "Widget", 1000, 10)

	entry, err := wishlistService.AddToWishlist(alice.ID, product.ID)
	require.NoError(t, err)

	_, err = wishlistService.MoveToCart(bob.ID, entry.ID)
	assert.ErrorIs(t, err, ErrWishlistItemNotFound)
}

func TestWishlistService_MoveToWishlist_Success(t *testing.T) {
	wishlistService, cartService, testDB := setupWishlistServiceTest(t)

	user := createTestUser(t, testDB, "wisher@example.com")
	product := createTestProduct(t, testDB, "Widget", 1000, 10)

	cartItem, err := cartService.AddToCart(user.ID, product.ID, 3)
	require.NoError(t, err)

	entry, err := wishlistService.MoveToWishlist(user.ID, cartItem.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, entry.ProductID)

	cart, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestWishlistService_MoveToWishlist_AlreadyWishlisted(t *testing.T) {
	wishlistService, cartService, testDB := setupWishlistServiceTest(t)

	user := createTestUser(t, testDB, "wisher@example.com")
	product := createTestProduct(t, testDB, "Widget", 1000, 10)

	existing, err := wishlistService.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)
	cartItem, err := cartService.AddToCart(user.ID, product.ID, 2)
	require.NoError(t, err)

	// The move reuses the existing entry instead of failing on the duplicate
	entry, err := wishlistService.MoveToWishlist(user.ID, cartItem.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, entry.ID)

	cart, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	wishlist, err := wishlistService.GetUserWishlist(user.ID)
	require.NoError(t, err)
	assert.Len(t, wishlist, 1)
}

func TestWishlistService_MoveToWishlist_CartLineNotFound(t *testing.T) {
	wishlistService, _, testDB := setupWishlistServiceTest(t)

	user := createTestUser(t, testDB, "wisher@example.com")

	_, err := wishlistService.MoveToWishlist(user.ID, 9999)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestWishlistService_RoundTrip(t *testing.T) {
	wishlistService, cartService, testDB := setupWishlistServiceTest(t)

	user := createTestUser(t, testDB, "wisher@example.com")
	product := createTestProduct(t, testDB, "Widget", 1000, 10)

	entry, err := wishlistService.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)

	cartItem, err := wishlistService.MoveToCart(user.ID, entry.ID)
	require.NoError(t, err)

	entry, err = wishlistService.MoveToWishlist(user.ID, cartItem.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, entry.ProductID)

	cart, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	wishlist, err := wishlistService.GetUserWishlist(user.ID)
	require.NoError(t, err)
	assert.Len(t, wishlist, 1)
}

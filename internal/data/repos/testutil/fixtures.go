package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/wshinigamic/wtg-backend/internal/domain"
)

func Cluster(c int) *int { return &c }

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Product {
	tb.Helper()
	p := &types.Product{Name: name, Slug: name + "-" + uuid.NewString()[:8]}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedVariant(tb testing.TB, ctx context.Context, tx *gorm.DB, productID uuid.UUID) *types.ProductVariant {
	tb.Helper()
	v := &types.ProductVariant{ProductID: productID, SKU: "sku-" + uuid.NewString()[:12], Name: "variant"}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed variant: %v", err)
	}
	return v
}

// SeedColor creates a product color; cluster may be nil.
func SeedColor(tb testing.TB, ctx context.Context, tx *gorm.DB, productID uuid.UUID, cluster *int) *types.ProductColor {
	tb.Helper()
	c := &types.ProductColor{
		ProductID: productID,
		ColorID:   uuid.New(),
		Cluster:   cluster,
		Metadata:  datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed product color: %v", err)
	}
	return c
}

func SeedChannel(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string) *types.Channel {
	tb.Helper()
	ch := &types.Channel{Slug: slug, Name: slug}
	if err := tx.WithContext(ctx).Create(ch).Error; err != nil {
		tb.Fatalf("seed channel: %v", err)
	}
	return ch
}

func SeedListing(tb testing.TB, ctx context.Context, tx *gorm.DB, productID, channelID uuid.UUID, visible bool) *types.ProductChannelListing {
	tb.Helper()
	l := &types.ProductChannelListing{ProductID: productID, ChannelID: channelID, VisibleInListings: visible}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed product listing: %v", err)
	}
	return l
}

func SeedColorListing(tb testing.TB, ctx context.Context, tx *gorm.DB, colorID, channelID uuid.UUID) *types.ProductColorChannelListing {
	tb.Helper()
	l := &types.ProductColorChannelListing{ProductColorID: colorID, ChannelID: channelID}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed color listing: %v", err)
	}
	return l
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB) *types.PreferenceProfile {
	tb.Helper()
	p := &types.PreferenceProfile{}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

// SeedScore creates (or reuses) the product score row for the color's
// product and adds a color score row with the given value.
func SeedScore(tb testing.TB, ctx context.Context, tx *gorm.DB, profileID uuid.UUID, color *types.ProductColor, score float64) *types.ProductColorScore {
	tb.Helper()
	var ps types.ProductScore
	err := tx.WithContext(ctx).
		Where("profile_id = ? AND product_id = ?", profileID, color.ProductID).
		First(&ps).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			tb.Fatalf("load product score: %v", err)
		}
		ps = types.ProductScore{ProfileID: profileID, ProductID: color.ProductID}
		if err := tx.WithContext(ctx).Create(&ps).Error; err != nil {
			tb.Fatalf("seed product score: %v", err)
		}
	}
	cs := &types.ProductColorScore{ProductScoreID: ps.ID, ProductColorID: color.ID, Score: score}
	if err := tx.WithContext(ctx).Create(cs).Error; err != nil {
		tb.Fatalf("seed color score: %v", err)
	}
	return cs
}

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	advancedomain "github.com/smallbiznis/dairypro/internal/advance/domain"
	collectiondomain "github.com/smallbiznis/dairypro/internal/collection/domain"
	farmerdomain "github.com/smallbiznis/dairypro/internal/farmer/domain"
	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) (settlementdomain.RecordStore, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&farmerdomain.Farmer{},
		&collectiondomain.MilkCollection{},
		&advancedomain.Advance{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(db), db, node
}

func at(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestFarmerPricingMissingReturnsNil(t *testing.T) {
	store, _, node := setupStore(t)

	pricing, err := store.FarmerPricing(context.Background(), node.Generate())
	require.NoError(t, err)
	assert.Nil(t, pricing)
}

func TestLastPositiveFatPicksLatestStrictlyEarlier(t *testing.T) {
	store, db, node := setupStore(t)

	farmer := farmerdomain.Farmer{ID: node.Generate(), Code: "F-1", Name: "Ramesh"}
	require.NoError(t, db.Create(&farmer).Error)

	insert := func(date time.Time, fat float64) collectiondomain.MilkCollection {
		rec := collectiondomain.MilkCollection{
			ID:       node.Generate(),
			FarmerID: farmer.ID,
			Date:     date,
			Shift:    collectiondomain.ShiftMorning,
			Quantity: 5,
			Fat:      fat,
			Snf:      8,
		}
		require.NoError(t, db.Create(&rec).Error)
		return rec
	}

	insert(at(1), 3.8)
	latest := insert(at(3), 4.2)
	insert(at(3), 0)   // unmeasured, must be skipped
	insert(at(5), 4.9) // same day as the lookup, not strictly earlier

	prior, err := store.LastPositiveFat(context.Background(), farmer.ID, at(5))
	require.NoError(t, err)
	require.NotNil(t, prior)
	assert.Equal(t, latest.ID, prior.ID)
	assert.Equal(t, 4.2, prior.Fat)
}

func TestCollectionsBoundedAndOrdered(t *testing.T) {
	store, db, node := setupStore(t)

	farmer := farmerdomain.Farmer{ID: node.Generate(), Code: "F-2", Name: "Suresh"}
	require.NoError(t, db.Create(&farmer).Error)

	for _, d := range []int{7, 2, 4, 12} {
		rec := collectiondomain.MilkCollection{
			ID:       node.Generate(),
			FarmerID: farmer.ID,
			Date:     at(d),
			Shift:    collectiondomain.ShiftMorning,
			Quantity: 5,
		}
		require.NoError(t, db.Create(&rec).Error)
	}

	records, err := store.Collections(context.Background(), farmer.ID, at(2), at(7))
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].Date.Before(records[i-1].Date))
	}
}

func TestTotalAdvancesSumsLifetime(t *testing.T) {
	store, db, node := setupStore(t)

	farmer := farmerdomain.Farmer{ID: node.Generate(), Code: "F-3", Name: "Mahesh"}
	require.NoError(t, db.Create(&farmer).Error)
	other := farmerdomain.Farmer{ID: node.Generate(), Code: "F-4", Name: "Other"}
	require.NoError(t, db.Create(&other).Error)

	for _, amount := range []float64{100, 50.5} {
		adv := advancedomain.Advance{ID: node.Generate(), FarmerID: farmer.ID, Amount: amount, Date: at(1)}
		require.NoError(t, db.Create(&adv).Error)
	}
	foreign := advancedomain.Advance{ID: node.Generate(), FarmerID: other.ID, Amount: 999, Date: at(1)}
	require.NoError(t, db.Create(&foreign).Error)

	total, err := store.TotalAdvances(context.Background(), farmer.ID)
	require.NoError(t, err)
	assert.Equal(t, 150.5, total)

	empty, err := store.TotalAdvances(context.Background(), node.Generate())
	require.NoError(t, err)
	assert.Zero(t, empty)
}

package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// RecordStore provides the read-only lookups a statement run needs.
// Each call sees whatever snapshot the store returns at query time; no
// transactional isolation is assumed.
type RecordStore interface {
	FarmerPricing(ctx context.Context, farmerID snowflake.ID) (*FarmerPricing, error)
	Collections(ctx context.Context, farmerID snowflake.ID, from, to time.Time) ([]CollectionRecord, error)
	LastPositiveFat(ctx context.Context, farmerID snowflake.ID, before time.Time) (*CollectionRecord, error)
	TotalAdvances(ctx context.Context, farmerID snowflake.ID) (float64, error)
}

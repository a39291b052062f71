package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Statement(ctx context.Context, farmerID snowflake.ID, from, to time.Time) (*Statement, error)
}

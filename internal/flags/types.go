package flags

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("route flag not found")

// Well-known keys controlling whether a conversion direction is routable.
const (
	DepositRouteKey = "route.deposit"
	RedeemRouteKey  = "route.redeem"
)

type RouteFlag struct {
	Key       string    `json:"key"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

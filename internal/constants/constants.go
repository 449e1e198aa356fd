package constants

// Redis keys
const (
	RedisKeyRecentQuotes  = "quotes:recent"
	RedisKeyReservePrefix = "reserve:"
)

// Redis Pub/Sub channels
const (
	PubSubChannelReserves = "reserves:live"
	PubSubChannelQuotes   = "quotes:live"
)

// Limits
const (
	MaxRecentQuotes = 200
)

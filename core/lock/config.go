package lock

// Config holds configuration for the cross-process run lock.
type Config struct {
	// RedisAddress is host:port of the redis server. Empty disables locking.
	RedisAddress string `mapstructure:"redis_address" default:""`
	// Password authenticates against redis.
	Password string `mapstructure:"password" default:""`
	// DB selects the redis database.
	DB int `mapstructure:"db" default:"0"`
	// Key is the lock key shared by every run against the same store.
	Key string `mapstructure:"key" default:"medifinder:ingest"`
	// TTLSeconds bounds how long a crashed run can keep the lock. A live run
	// refreshes it every half TTL.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"3600"`
}

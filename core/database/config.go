package database

// Config holds configuration for the database connection.
type Config struct {
	// Driver is the database driver (postgres, mysql, sqlite).
	Driver string `mapstructure:"driver" default:"postgres"`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"5432"`
	// User is the database user.
	User string `mapstructure:"user" default:"postgres"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name. For sqlite it is the file path or ":memory:".
	Name string `mapstructure:"name" default:"medifinder"`
	// SSLMode is passed through to the postgres driver.
	SSLMode string `mapstructure:"ssl_mode" default:"disable"`
	// TimeoutSeconds bounds connection setup and the initial ping.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxOpenConns is the upper bound of the connection pool.
	MaxOpenConns int `mapstructure:"max_open_conns" default:"10"`
	// MaxIdleConns is the number of connections kept warm.
	MaxIdleConns int `mapstructure:"max_idle_conns" default:"1"`
	// Retries is the number of attempts for a transactional unit hitting transient failures.
	Retries int `mapstructure:"retries" default:"3"`
	// RetryDelayMs is the fixed delay between attempts.
	RetryDelayMs int `mapstructure:"retry_delay_ms" default:"2000"`
}

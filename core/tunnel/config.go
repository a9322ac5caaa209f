package tunnel

// Config holds configuration for the SSH tunnel in front of the database.
type Config struct {
	// Enabled routes database traffic through the SSH bastion.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Host is the SSH bastion host.
	Host string `mapstructure:"host" default:"ssh.pythonanywhere.com"`
	// Port is the SSH bastion port.
	Port int `mapstructure:"port" default:"22"`
	// User is the SSH login.
	User string `mapstructure:"user" default:""`
	// Password authenticates the SSH login when no key file is configured.
	Password string `mapstructure:"password" default:""`
	// KeyFile is an optional PEM private key used instead of the password.
	KeyFile string `mapstructure:"key_file" default:""`
	// KnownHosts is an optional known_hosts file used to verify the bastion.
	KnownHosts string `mapstructure:"known_hosts" default:""`
	// TimeoutSeconds bounds the SSH handshake.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

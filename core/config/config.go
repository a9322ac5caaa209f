package config

import (
	"reflect"
	"strings"

	"medifinder-ingestor/core/database"
	"medifinder-ingestor/core/lock"
	"medifinder-ingestor/core/logger"
	"medifinder-ingestor/core/metrics"
	"medifinder-ingestor/core/storage"
	"medifinder-ingestor/core/tunnel"
	"medifinder-ingestor/feature/inventory/etl"
	"medifinder-ingestor/feature/inventory/parser"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the ingestor, one section per component.
type Config struct {
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Tunnel holds configuration for the optional SSH tunnel to the database.
	Tunnel tunnel.Config `mapstructure:"tunnel"`
	// Parser holds configuration for reading extracts.
	Parser parser.Config `mapstructure:"parser"`
	// ETL holds configuration for the record processor.
	ETL etl.Config `mapstructure:"etl"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Lock holds configuration for the distributed run lock.
	Lock lock.Config `mapstructure:"lock"`
	// Metrics holds configuration for the run metrics export.
	Metrics metrics.Config `mapstructure:"metrics"`
}

// LoadConfig loads configuration from environment variables and the .env file in path.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// A missing .env is fine, production sets real environment variables.
	_ = godotenv.Overload(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	// DATABASE_HOST -> database.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues walks the struct and registers every 'mapstructure' key in Viper
// with the value of its 'default' tag.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Empty defaults are registered too, AutomaticEnv only sees known keys.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}

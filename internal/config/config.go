package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"permission-engine/internal/utils/runtime"
)

const (
	kafkaHostFlag          = "kafka-host"
	kafkaPortFlag          = "kafka-port"
	mongoDBURIFlag         = "mongodb-uri"
	developmentFlag        = "development"
	cacheTTLFlag           = "cache-ttl"
	cleanupIntervalFlag    = "cleanup-interval"
	defaultGroupWeightFlag = "default-group-weight"
)

type Config struct {
	Kafka   KafkaConfig
	MongoDB MongoDBConfig

	Development bool

	// CacheTTL bounds how stale a cached verdict or effective-permission
	// set may get before it is recomputed.
	CacheTTL time.Duration

	// CleanupInterval is how often expired temporary grants are removed
	// from storage. Expired entries are also filtered lazily at read time,
	// so the interval only bounds storage growth.
	CleanupInterval time.Duration

	// DefaultGroupWeight is assigned to newly created groups when no
	// explicit weight is given.
	DefaultGroupWeight int32
}

type KafkaConfig struct {
	Host string
	Port int
}

type MongoDBConfig struct {
	URI string
}

func LoadGlobalConfig() *Config {
	viper.SetDefault(kafkaHostFlag, "localhost")
	viper.SetDefault(kafkaPortFlag, 9092)
	viper.SetDefault(mongoDBURIFlag, "mongodb://localhost:27017")
	viper.SetDefault(developmentFlag, true)
	viper.SetDefault(cacheTTLFlag, 300)
	viper.SetDefault(cleanupIntervalFlag, 300)
	viper.SetDefault(defaultGroupWeightFlag, 1)

	pflag.String(kafkaHostFlag, viper.GetString(kafkaHostFlag), "Kafka host")
	pflag.Int32(kafkaPortFlag, viper.GetInt32(kafkaPortFlag), "Kafka port")
	pflag.String(mongoDBURIFlag, viper.GetString(mongoDBURIFlag), "MongoDB URI")
	pflag.Bool(developmentFlag, viper.GetBool(developmentFlag), "Development mode")
	pflag.Int32(cacheTTLFlag, viper.GetInt32(cacheTTLFlag), "Resolver cache TTL (seconds)")
	pflag.Int32(cleanupIntervalFlag, viper.GetInt32(cleanupIntervalFlag), "Expired-grant cleanup interval (seconds)")
	pflag.Int32(defaultGroupWeightFlag, viper.GetInt32(defaultGroupWeightFlag), "Weight for newly created groups")
	pflag.Parse()

	// Bind the viper flags to environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	runtime.Must(viper.BindEnv(kafkaHostFlag))
	runtime.Must(viper.BindEnv(kafkaPortFlag))
	runtime.Must(viper.BindEnv(mongoDBURIFlag))
	runtime.Must(viper.BindEnv(developmentFlag))
	runtime.Must(viper.BindEnv(cacheTTLFlag))
	runtime.Must(viper.BindEnv(cleanupIntervalFlag))
	runtime.Must(viper.BindEnv(defaultGroupWeightFlag))

	return &Config{
		Kafka: KafkaConfig{
			Host: viper.GetString(kafkaHostFlag),
			Port: int(viper.GetInt32(kafkaPortFlag)),
		},
		MongoDB: MongoDBConfig{
			URI: viper.GetString(mongoDBURIFlag),
		},
		Development:        viper.GetBool(developmentFlag),
		CacheTTL:           time.Duration(viper.GetInt32(cacheTTLFlag)) * time.Second,
		CleanupInterval:    time.Duration(viper.GetInt32(cleanupIntervalFlag)) * time.Second,
		DefaultGroupWeight: viper.GetInt32(defaultGroupWeightFlag),
	}
}

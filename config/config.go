package config

import (
	"fmt"

	"PChat/tools/errs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the process-level environment configuration. The retention sweep
// interval and message retention age are fixed constants of the chat service,
// not configuration.
type Config struct {
	Port          int    `envconfig:"PORT" default:"5000"`
	MongoURI      string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"chat"`
	ClientOrigin  string `envconfig:"CLIENT_ORIGIN" default:"http://localhost:5173"`
	JWTSecret     string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errs.WrapMsg(err, "process env config failed")
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

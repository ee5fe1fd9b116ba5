package config // package config loads application configuration from environment variables

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Values missing from the environment fall back to
// the defaults declared in the struct tags; fields marked required abort
// startup when unset.
type Config struct {
	Env         string        `envconfig:"APP_ENV" default:"dev"`                   // application environment (dev/test/prod)
	Port        string        `envconfig:"APP_PORT" default:"5000"`                 // HTTP port to listen on
	DBUser      string        `envconfig:"DB_USER" required:"true"`                 // database username
	DBPass      string        `envconfig:"DB_PASS"`                                 // database password (optional)
	DBHost      string        `envconfig:"DB_HOST" default:"localhost"`             // database host address
	DBPort      string        `envconfig:"DB_PORT" default:"3306"`                  // database port number
	DBName      string        `envconfig:"DB_NAME" required:"true"`                 // database name
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`              // secret used to sign session tokens
	SessionTTL  time.Duration `envconfig:"SESSION_TTL" default:"1h"`                // session token lifetime
	BcryptCost  int           `envconfig:"BCRYPT_COST" default:"10"`                // bcrypt cost for password hashing
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`                // logrus level name
	LogFormat   string        `envconfig:"LOG_FORMAT" default:"text"`               // text or json
	RabbitURL   string        `envconfig:"RABBITMQ_URL"`                            // empty disables rating events
	EventsQueue string        `envconfig:"EVENTS_QUEUE" default:"rating.submitted"` // queue receiving rating events
	LogDir      string        `envconfig:"LOG_DIR" default:"logs"`                  // directory for the rating audit log
}

// Load reads an optional .env file and then decodes the environment into a
// Config.  Variables already present in the process environment win over the
// .env file.
func Load() (Config, error) {
	_ = godotenv.Load() // a missing .env is not an error
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if c.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("load config: SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return c, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

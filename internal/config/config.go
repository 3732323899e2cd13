// Package config holds the data layer's environment-driven settings.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config groups all tunables. Values are taken from environment variables
// with the prefix "PF_". Example: PF_IMAGE_CACHE_TTL=15m.
type Config struct {
	DocServiceURL        string        `envconfig:"DOC_SERVICE_URL"        default:"http://localhost:8080"`
	TutorialsCollection  string        `envconfig:"TUTORIALS_COLLECTION"   default:"tutorials"`
	CategoriesCollection string        `envconfig:"CATEGORIES_COLLECTION"  default:"categories"`
	FavoritesKey         string        `envconfig:"FAVORITES_KEY"          default:"prodigyfix.favorites"`
	FavoritesDBPath      string        `envconfig:"FAVORITES_DB_PATH"      default:"prodigyfix.db"`
	ImageBucket          string        `envconfig:"IMAGE_BUCKET"`
	ImageCacheTTL        time.Duration `envconfig:"IMAGE_CACHE_TTL"        default:"30m"`
	ImageMaxAttempts     int           `envconfig:"IMAGE_MAX_ATTEMPTS"     default:"3"`
	ImageBackoffStep     time.Duration `envconfig:"IMAGE_BACKOFF_STEP"     default:"1s"`
	SubscribePollEvery   time.Duration `envconfig:"SUBSCRIBE_POLL_EVERY"   default:"5s"`
}

// Load populates Config from environment variables (prefix PF).
func Load() (Config, error) {
	var c Config
	return c, envconfig.Process("PF", &c)
}

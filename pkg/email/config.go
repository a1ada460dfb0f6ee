package email

import "time"

// Config is loaded from EMAIL_* variables.
type Config struct {
	BaseURL     string        `env:"EMAIL_BASE_URL" envDefault:"https://api.postmarkapp.com"`
	ServerToken string        `env:"EMAIL_SERVER_TOKEN"`
	Sender      string        `env:"EMAIL_SENDER,required"`
	Timeout     time.Duration `env:"EMAIL_TIMEOUT" envDefault:"10s"`

	// DevDir switches to the file-writing sender when set.
	DevDir string `env:"EMAIL_DEV_DIR"`
}

package config

import "fmt"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`

	Mongo  Mongo  `envPrefix:"MONGODB_"`
	Stripe Stripe `envPrefix:"STRIPE_"`
}

type Mongo struct {
	URI      string `env:"URI"`
	Database string `env:"DATABASE" envDefault:"mindgym"`
}

type Stripe struct {
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	PriceID       string `env:"PRICE_ID"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// Validate fails fast on missing required settings. A hole here is a
// deployment error, not a transient condition, so the process must not start.
func (c *Config) Validate() error {
	required := []struct {
		name, value string
	}{
		{"BASE_URL", c.BaseURL},
		{"MONGODB_URI", c.Mongo.URI},
		{"STRIPE_SECRET_KEY", c.Stripe.SecretKey},
		{"STRIPE_WEBHOOK_SECRET", c.Stripe.WebhookSecret},
		{"STRIPE_PRICE_ID", c.Stripe.PriceID},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required config: %s", r.name)
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment.Name == "production"
}

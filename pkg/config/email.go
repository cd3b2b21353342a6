package config

const (
	DeliverySMTP = "smtp"
	DeliveryLog  = "log"
)

type EmailConfig struct {
	// Delivery selects SMTP or a deliverer that only logs messages.
	Delivery string `env:"EMAIL_DELIVERY" env-default:"smtp"`
	Host     string `env:"EMAIL_HOST" env-default:"localhost"`
	Port     int    `env:"EMAIL_PORT" env-default:"1025"`
	Username string `env:"EMAIL_USERNAME" env-default:""`
	Password string `env:"EMAIL_PASSWORD" env-default:""`
	From     string `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"false"`
	LoginURL string `env:"LOGIN_URL" env-default:"http://localhost:3000/login"`
}

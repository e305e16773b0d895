package votes

// Config holds the votes module configuration.
type Config struct {
	WebhookAuth string `env:"TOPGG_WEBHOOK_AUTH,notEmpty"`
	WebhookAddr string `env:"TOPGG_WEBHOOK_ADDR" envDefault:":8001"`
	VoteURL     string `env:"TOPGG_VOTE_URL"`

	// RedisAddr left empty selects the in-memory vote store.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

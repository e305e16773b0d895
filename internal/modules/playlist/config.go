package playlist

// Config holds the playlist module configuration.
type Config struct {
	MasterKey  string `env:"PLAYLIST_MASTER_KEY,notEmpty"`
	ListenAddr string `env:"PLAYLIST_API_ADDR" envDefault:":8000"`
	APIURL     string `env:"PLAYLIST_API_URL" envDefault:"http://localhost:8000"`

	// Storage selects the persistence backend: "postgres" or "memory".
	// The memory backend is for local development only.
	Storage string `env:"PLAYLIST_STORAGE" envDefault:"postgres"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"rumblebot"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
}

package bullhorn

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Default Bullhorn endpoint constants.
const (
	// defaultAuthURL is the Bullhorn OAuth authorization endpoint
	defaultAuthURL = "https://auth.bullhornstaffing.com"

	// defaultLoginURL is the Bullhorn REST login endpoint
	defaultLoginURL = "https://rest.bullhornstaffing.com"
)

// Config contains the Bullhorn API credentials and endpoints.
type Config struct {
	// ClientID is the OAuth client identifier issued by Bullhorn
	ClientID string

	// ClientSecret is the OAuth client secret
	ClientSecret string

	// Username is the Bullhorn API user name
	Username string

	// Password is the Bullhorn API user password
	Password string

	// AuthURL is the OAuth authorization base URL
	AuthURL string

	// LoginURL is the REST login base URL
	LoginURL string
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first if one is present. envFile may name an explicit file to load;
// when empty the default .env lookup applies.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		// A missing .env file is fine, plain environment variables still apply.
		_ = godotenv.Load()
	}

	cfg := &Config{
		ClientID:     os.Getenv("BULLHORN_CLIENT_ID"),
		ClientSecret: os.Getenv("BULLHORN_CLIENT_SECRET"),
		Username:     os.Getenv("BULLHORN_USERNAME"),
		Password:     os.Getenv("BULLHORN_PASSWORD"),
		AuthURL:      os.Getenv("BULLHORN_AUTH_URL"),
		LoginURL:     os.Getenv("BULLHORN_LOGIN_URL"),
	}

	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = defaultLoginURL
	}

	var missing []string
	if cfg.ClientID == "" {
		missing = append(missing, "BULLHORN_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		missing = append(missing, "BULLHORN_CLIENT_SECRET")
	}
	if cfg.Username == "" {
		missing = append(missing, "BULLHORN_USERNAME")
	}
	if cfg.Password == "" {
		missing = append(missing, "BULLHORN_PASSWORD")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	return cfg, nil
}

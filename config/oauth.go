package config

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var GoogleOAuthConfig *oauth2.Config

// InitGoogleOAuth prepares staff sign-in with Google. It leaves
// GoogleOAuthConfig nil when no client id is configured.
func InitGoogleOAuth(cfg *Config) {
	if cfg.Google.ClientID == "" {
		GoogleOAuthConfig = nil
		return
	}
	GoogleOAuthConfig = &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

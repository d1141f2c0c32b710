package credential

import "time"

// AppCredential is the token bundle held for one app.
type AppCredential struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
	APIKey       string
}

// complete reports whether every field is populated. Only complete bundles
// are ever stored.
func (c AppCredential) complete() bool {
	return c.AccessToken != "" &&
		c.RefreshToken != "" &&
		c.ClientID != "" &&
		c.ClientSecret != "" &&
		c.APIKey != ""
}

type entry struct {
	cred        AppCredential
	validatedAt time.Time
}

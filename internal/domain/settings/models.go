package settings

import "time"

type UserSetting struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SystemSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Integration holds an outbound connector. The API key is stored
// encrypted and only ever returned masked.
type Integration struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	WebhookURL   string    `json:"webhookUrl,omitempty"`
	APIKeyMasked string    `json:"apiKeyMasked,omitempty"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type IntegrationInput struct {
	Name       string
	Kind       string
	WebhookURL string
	APIKey     string
	Enabled    bool
}

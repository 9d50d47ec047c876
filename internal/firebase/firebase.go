package firebase

import (
	"context"
	"os"

	"neighborhood/backend/internal/config"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// NewApp prefers FIREBASE_SERVICE_ACCOUNT_JSON (raw json content), then
// GOOGLE_APPLICATION_CREDENTIALS (path), then Application Default Credentials.
func NewApp(ctx context.Context, cfg config.Config) (*firebase.App, error) {
	appCfg := &firebase.Config{}
	if cfg.ProjectID != "" {
		appCfg.ProjectID = cfg.ProjectID
	}
	if cfg.StorageBucket != "" {
		appCfg.StorageBucket = cfg.StorageBucket
	}
	return firebase.NewApp(ctx, appCfg, credentialOptions()...)
}

func credentialOptions() []option.ClientOption {
	var opts []option.ClientOption
	if json := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); json != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(json)))
	} else if cred := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); cred != "" {
		opts = append(opts, option.WithCredentialsFile(cred))
	}
	return opts
}

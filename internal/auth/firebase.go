package auth

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/atelier-arq/atelier-backend/config"
)

// NewFirebaseVerifier builds the ID-token verifier from a service account.
// Inline JSON credentials win over a credentials file.
func NewFirebaseVerifier(ctx context.Context, cfg config.FirebaseConfig) (*fbauth.Client, error) {
	var opt option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opt = option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))
	case cfg.CredentialsPath != "":
		opt = option.WithCredentialsFile(cfg.CredentialsPath)
	default:
		return nil, fmt.Errorf("firebase: no credentials configured")
	}

	var appCfg *firebase.Config
	if cfg.ProjectID != "" {
		appCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, opt)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}

	project := cfg.ProjectID
	if project == "" {
		project = "(from credentials)"
	}
	log.Printf("[info] firebase token verification enabled project=%s", project)
	return client, nil
}

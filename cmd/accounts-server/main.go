package main

import (
	"context"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"

	accounts "github.com/goliatone/go-accounts"
	fbprovider "github.com/goliatone/go-accounts/provider/firebase"
	"github.com/goliatone/go-accounts/provider/memory"
)

type config struct {
	Addr               string `env:"ADDR" envDefault:":3030"`
	Provider           string `env:"IDENTITY_PROVIDER" envDefault:"memory"`
	SigningKey         string `env:"SIGNING_KEY" envDefault:"dev-signing-key"`
	ProjectID          string `env:"FIREBASE_PROJECT_ID"`
	CredentialsFile    string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	LogRequests        bool   `env:"LOG_REQUESTS" envDefault:"true"`
	DisableNewAccounts bool   `env:"DISABLE_NEW_ACCOUNTS"`
}

func main() {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	var svc accounts.IdentityService
	switch cfg.Provider {
	case "firebase":
		svc, err = fbprovider.New(ctx, fbprovider.Config{
			ProjectID:       cfg.ProjectID,
			CredentialsFile: cfg.CredentialsFile,
		})
		if err != nil {
			log.Fatalf("identity provider: %v", err)
		}
	case "memory":
		svc = memory.New(cfg.SigningKey)
	default:
		log.Fatalf("unknown identity provider: %s", cfg.Provider)
	}

	pipeline := accounts.NewPipeline(
		accounts.NewRegistry(),
		accounts.NewAuthenticator(svc),
		accounts.Config{
			LogRequests:        cfg.LogRequests,
			DisableNewAccounts: cfg.DisableNewAccounts,
		},
	)

	pipeline.Register(accounts.ResourceAccounts, accounts.NewAccountService(svc), accounts.AccountPolicies, accounts.AccountErrorDefaults)
	pipeline.Register(accounts.ResourceAuthentication, accounts.NewAuthenticationService(svc), accounts.AuthenticationPolicies, accounts.AuthenticationErrorDefaults)
	pipeline.Register(accounts.ResourceDocumentation, accounts.NewDocumentationService(), accounts.DocumentationPolicies, accounts.DocumentationErrorDefaults)

	app := fiber.New(fiber.Config{
		AppName:      "accounts",
		ErrorHandler: accounts.ErrorHandler,
	})

	accounts.NewHTTPController(pipeline).RegisterRoutes(app)

	log.Printf("accounts server listening on %s", cfg.Addr)

	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}

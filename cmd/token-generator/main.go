// Command token-generator mints a bearer token for local development.
//
// It reads the same configuration as the server, so the token is signed with
// the configured SCRY_AUTH_JWT_SECRET:
//
//	token-generator -user 6f1c...  # prints a token for that user
//	token-generator                # prints a token for a fresh user id
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/service/auth"
)

func main() {
	userFlag := flag.String("user", "", "user id to issue the token for (random when empty)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := generate(context.Background(), os.Stdout, cfg.Auth, *userFlag); err != nil {
		log.Fatal(err)
	}
}

// generate writes the user id and a signed access token to w.
func generate(ctx context.Context, w io.Writer, cfg config.AuthConfig, user string) error {
	userID := uuid.New()
	if user != "" {
		parsed, err := uuid.Parse(user)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", user, err)
		}
		userID = parsed
	}

	jwtService, err := auth.NewJWTService(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	token, err := jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_, err = fmt.Fprintf(w, "User:  %s\nToken: %s\n", userID, token)
	return err
}

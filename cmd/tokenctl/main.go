package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/models"
	"github.com/noah-isme/tennis-lesson-scheduler/internal/service"
	"github.com/noah-isme/tennis-lesson-scheduler/pkg/config"
)

// tokenctl issues access tokens signed with the server's JWT secret.
func main() {
	userID := flag.String("user", "", "user id placed in the token")
	role := flag.String("role", string(models.RoleAdmin), "ADMIN, COACH or VIEWER")
	coachID := flag.String("coach", "", "coach id for COACH tokens")
	ttl := flag.Duration("ttl", 0, "token lifetime; defaults to JWT_EXPIRATION")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	expiration := cfg.JWT.Expiration
	if *ttl > 0 {
		expiration = *ttl
	}

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, TTL: expiration})
	token, expiresAt, err := tokens.Issue(*userID, models.UserRole(*role), *coachID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
}

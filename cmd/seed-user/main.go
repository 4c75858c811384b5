package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/strubloid/neotalent-sub000/internal/auth"
	"github.com/strubloid/neotalent-sub000/internal/models"
	"github.com/strubloid/neotalent-sub000/internal/users"
)

// MinPasswordLength is the minimum password length requirement
const MinPasswordLength = 8

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

func main() {
	// Parse command-line flags
	username := flag.String("username", "", "Username (required, 3-50 chars of letters, numbers, underscores)")
	password := flag.String("password", "", "Password (required, min 8 chars)")
	nickname := flag.String("nickname", "", "Display name (required)")
	flag.Parse()

	// Initialize OpenTelemetry for observability
	if err := initTracer(); err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}

	// Validate inputs
	if err := validateInputs(*username, *password, *nickname); err != nil {
		log.Fatalf("Validation error: %v", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	// Connect to PostgreSQL
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to PostgreSQL database")

	store := users.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	user, err := createUser(ctx, store, *username, *password, *nickname)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	log.Printf("✓ Successfully created user")
	log.Printf("  ID: %s", user.ID)
	log.Printf("  Username: %s", user.Username)
	log.Printf("  Nickname: %s", user.Nickname)
}

// validateInputs validates user input according to security requirements
func validateInputs(username, password, nickname string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-50 characters of letters, numbers and underscores")
	}

	if strings.TrimSpace(nickname) == "" {
		return fmt.Errorf("nickname is required and cannot be empty")
	}

	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return fmt.Errorf("password must contain at least one letter and one number")
	}

	return nil
}

// createUser creates a new account with a hashed password
func createUser(ctx context.Context, store users.Store, username, password, nickname string) (*models.User, error) {
	tracer := otel.Tracer("seed-user")
	ctx, span := tracer.Start(ctx, "create_user")
	defer span.End()

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := store.Create(ctx, username, hashed, strings.TrimSpace(nickname))
	if err != nil {
		if errors.Is(err, users.ErrDuplicateUsername) {
			return nil, fmt.Errorf("user %s already exists", username)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// initTracer initializes OpenTelemetry tracing
func initTracer() error {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)

	return nil
}

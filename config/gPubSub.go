package config

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

func init() {
	// Load env from .env
	godotenv.Load()
}

// GetPubSubClient returns a Pub/Sub client, initializing it lazily.
// It uses Application Default Credentials unless PUBSUB_CREDENTIALS_JSON is
// provided. Returns an error when no project is configured; callers treat
// that as "audit event publishing disabled".
func GetPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	var opts []option.ClientOption
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}

	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	client, err := pubsub.NewClient(cctx, projectID, opts...)
	if err != nil {
		log.Printf("failed to create pubsub client: %v", err)
		return nil, err
	}
	pubsubClient = client
	return pubsubClient, nil
}

func getPubSubProjectID() string {
	// Prefer explicit override.
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	// Cloud Run/Cloud Functions often set this.
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return ""
}

// LedgerEventsTopic returns the configured audit topic name.
func LedgerEventsTopic() string {
	if v := os.Getenv("LEDGER_EVENTS_TOPIC"); v != "" {
		return v
	}
	return "fabric-ledger-events"
}

// Package testutil holds helpers shared by repository tests.
package testutil

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

// Firestore returns a client bound to the local emulator, or skips the test
// when FIRESTORE_EMULATOR_HOST is not set. Each call gets its own project id
// so tests never see each other's documents.
func Firestore(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set; skipping emulator test")
	}
	client, err := firestore.NewClient(context.Background(), "test-"+uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("firestore emulator client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

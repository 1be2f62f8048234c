// Package testutils builds recorded provider clients for integration tests.
package testutils

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	language "cloud.google.com/go/language/apiv1"
	"github.com/areknoster/hypert"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/genai"

	"github.com/datar-psa/stargraph/gemini"
)

// ShouldUpdate returns true if tests should record fresh HTTP responses.
// Set UPDATE_TESTS=true to re-record.
func ShouldUpdate() bool {
	return os.Getenv("UPDATE_TESTS") == "true"
}

// SkipUnlessRecorded skips integration tests in -short mode and when there is
// neither a recording nor a project to record against.
func SkipUnlessRecorded(t *testing.T, config GeminiTestConfig) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if _, err := os.Stat(filepath.Join("testdata", config.SubDir)); err == nil {
		return
	}
	if config.Project == "" || !ShouldUpdate() {
		t.Skip("Skipping integration test: no recorded responses, set GOOGLE_PROJECT_ID and UPDATE_TESTS=true to record")
	}
}

// HypertClientConfig configures hypert client creation
type HypertClientConfig struct {
	TestDataDir string
	SubDir      string // Optional subdirectory for organizing test data
	// QuotaProject sets the X-Goog-User-Project header while recording
	QuotaProject string
}

// NewHypertClient creates an HTTP client that replays recorded responses,
// or records them with application default credentials when ShouldUpdate is true.
func NewHypertClient(t *testing.T, config HypertClientConfig) *http.Client {
	testDataDir := config.TestDataDir
	if config.SubDir != "" {
		testDataDir = filepath.Join(testDataDir, config.SubDir)
	}

	namingScheme, err := hypert.NewContentHashNamingScheme(testDataDir)
	if err != nil {
		t.Fatalf("failed to create naming scheme: %v", err)
	}

	hypertClient := hypert.TestClient(t, ShouldUpdate(),
		hypert.WithNamingScheme(namingScheme),
		hypert.WithRequestValidator(hypert.ComposedRequestValidator(
			hypert.PathValidator(),
			hypert.QueryParamsValidator(),
			hypert.MethodValidator(),
		)),
	)

	if !ShouldUpdate() {
		return hypertClient
	}

	ctx := context.Background()
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		t.Fatalf("failed to get default credentials: %v", err)
	}
	authed := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, hypertClient), creds.TokenSource)
	if config.QuotaProject == "" {
		return authed
	}
	return &http.Client{
		Transport: &quotaProjectTransport{base: authed.Transport, projectID: config.QuotaProject},
		Timeout:   authed.Timeout,
	}
}

type quotaProjectTransport struct {
	base      http.RoundTripper
	projectID string
}

func (t *quotaProjectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Goog-User-Project", t.projectID)
	return t.base.RoundTrip(req)
}

// GeminiTestConfig configures Google clients for tests
type GeminiTestConfig struct {
	Project  string
	Location string
	SubDir   string // Subdirectory for hypert test data
}

// DefaultGeminiTestConfig reads GOOGLE_PROJECT_ID and GOOGLE_REGION
func DefaultGeminiTestConfig(subDir string) GeminiTestConfig {
	location := os.Getenv("GOOGLE_REGION")
	if location == "" {
		location = "us-central1"
	}
	return GeminiTestConfig{
		Project:  os.Getenv("GOOGLE_PROJECT_ID"),
		Location: location,
		SubDir:   subDir,
	}
}

// NewGeminiClient creates a Vertex AI genai client backed by hypert
func NewGeminiClient(t *testing.T, config GeminiTestConfig) *genai.Client {
	httpClient := NewHypertClient(t, HypertClientConfig{
		TestDataDir: "testdata",
		SubDir:      config.SubDir,
	})

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		Backend:    genai.BackendVertexAI,
		Project:    config.Project,
		Location:   config.Location,
		HTTPClient: httpClient,
	})
	if err != nil {
		t.Fatalf("failed to create genai client: %v", err)
	}
	return client
}

// NewGeminiBackend creates a recorded Gemini backend
func NewGeminiBackend(t *testing.T, config GeminiTestConfig, modelName string) *gemini.Backend {
	return gemini.NewBackend(NewGeminiClient(t, config), modelName)
}

// NewLanguageModerator creates a recorded Cloud Natural Language moderator
func NewLanguageModerator(t *testing.T, config GeminiTestConfig) *gemini.LanguageModerator {
	httpClient := NewHypertClient(t, HypertClientConfig{
		TestDataDir:  "testdata",
		SubDir:       config.SubDir,
		QuotaProject: config.Project,
	})

	client, err := language.NewRESTClient(context.Background(), option.WithHTTPClient(httpClient))
	if err != nil {
		t.Fatalf("failed to create language client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return gemini.NewLanguageModerator(client)
}

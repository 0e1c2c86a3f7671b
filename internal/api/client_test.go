package api

import (
	"os"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestNewClient_WithAPIKey(t *testing.T) {
	cfg := ClientConfig{
		APIKey: "test-key-123",
		Model:  anthropic.ModelClaudeSonnet4_20250514,
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if client == nil {
		t.Fatal("NewClient returned nil")
	}

	if client.Model() != anthropic.ModelClaudeSonnet4_20250514 {
		t.Errorf("Model = %q, want %q", client.Model(), anthropic.ModelClaudeSonnet4_20250514)
	}

	if client.Tracker() == nil {
		t.Error("Tracker should not be nil")
	}
}

func TestNewClient_WithEnvVar(t *testing.T) {
	// Save and restore original env var
	original := os.Getenv("ANTHROPIC_API_KEY")
	defer os.Setenv("ANTHROPIC_API_KEY", original)

	os.Setenv("ANTHROPIC_API_KEY", "env-test-key")

	cfg := ClientConfig{
		Model: anthropic.ModelClaudeSonnet4_20250514,
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if client == nil {
		t.Fatal("NewClient returned nil")
	}
}

func TestNewClient_NoAPIKey(t *testing.T) {
	// Save and restore original env var
	original := os.Getenv("ANTHROPIC_API_KEY")
	defer os.Setenv("ANTHROPIC_API_KEY", original)

	os.Unsetenv("ANTHROPIC_API_KEY")

	cfg := ClientConfig{}

	_, err := NewClient(cfg)
	if err == nil {
		t.Fatal("NewClient should fail without API key")
	}

	expected := "ANTHROPIC_API_KEY environment variable is not set"
	if err.Error() != expected {
		t.Errorf("Error = %q, want %q", err.Error(), expected)
	}
}

func TestNewClient_DefaultModel(t *testing.T) {
	cfg := ClientConfig{
		APIKey: "test-key",
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if client.Model() != anthropic.ModelClaudeSonnet4_20250514 {
		t.Errorf("Model = %q, want default sonnet model", client.Model())
	}
}

func TestNewClient_DefaultMaxTokens(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if client.maxTokens != defaultMaxTokens {
		t.Errorf("maxTokens = %d, want %d", client.maxTokens, defaultMaxTokens)
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	got := translateModelForBedrock(anthropic.ModelClaudeSonnet4_20250514)
	if got != "us.anthropic.claude-sonnet-4-20250514-v1:0" {
		t.Errorf("translated model = %q, want bedrock inference profile", got)
	}

	// Unknown models pass through unchanged
	custom := anthropic.Model("us.anthropic.custom-model-v1:0")
	if got := translateModelForBedrock(custom); got != custom {
		t.Errorf("custom model = %q, want unchanged", got)
	}
}

func TestTokenTracker(t *testing.T) {
	tracker := NewTokenTracker()

	tracker.Add(100, 50)
	tracker.Add(200, 75)

	input, output := tracker.Total()
	if input != 300 {
		t.Errorf("input tokens = %d, want 300", input)
	}
	if output != 125 {
		t.Errorf("output tokens = %d, want 125", output)
	}
	if tracker.Calls() != 2 {
		t.Errorf("calls = %d, want 2", tracker.Calls())
	}

	tracker.Reset()
	input, output = tracker.Total()
	if input != 0 || output != 0 || tracker.Calls() != 0 {
		t.Errorf("after Reset: input=%d output=%d calls=%d, want zeros", input, output, tracker.Calls())
	}
}

func TestTokenTracker_Cost(t *testing.T) {
	tracker := NewTokenTracker()
	tracker.Add(1_000_000, 1_000_000)

	if got := tracker.Cost(); got != 18.0 {
		t.Errorf("Cost = %f, want 18.0", got)
	}
}

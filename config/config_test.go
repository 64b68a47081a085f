package config

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/wacul/ptr"
)

func TestValidateAndAddDefaults(t *testing.T) {
	// Missing workflow engine URL
	cnf := Configuration{
		Redis: RedisConfig{
			Dns: "localhost:6379",
		},
	}

	err := cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "workflow engine URL is required" {
		t.Errorf("Expected workflow engine URL required error, got %v", err)
	}

	// Missing redis DNS
	cnf = Configuration{
		WorkflowEngine: WorkflowEngineConfig{
			Url: "http://workflow-engine:8089",
		},
	}

	err = cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "redis DNS is required" {
		t.Errorf("Expected redis DNS required error, got %v", err)
	}

	// All required fields present, defaults filled in
	cnf = Configuration{
		ProjectName: "Test Project",
		WorkflowEngine: WorkflowEngineConfig{
			Url: "http://workflow-engine:8089",
		},
		Redis: RedisConfig{
			Dns: "localhost:6379",
		},
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if cnf.Server.Port != DEFAULT_PORT {
		t.Errorf("Expected default port %s, got %s", DEFAULT_PORT, cnf.Server.Port)
	}
	if cnf.Pinata.APIURL != DefaultPinataAPIURL {
		t.Errorf("Expected default Pinata API URL, got %s", cnf.Pinata.APIURL)
	}
	if cnf.Upload.MaxSizeBytes != 10<<20 {
		t.Errorf("Expected default max upload size, got %d", cnf.Upload.MaxSizeBytes)
	}
	if len(cnf.Upload.AllowedTypes) != 3 {
		t.Errorf("Expected default allowed types, got %v", cnf.Upload.AllowedTypes)
	}
	if cnf.Queue.StatusSyncQueue != "kyc:status-sync" {
		t.Errorf("Expected default status sync queue, got %s", cnf.Queue.StatusSyncQueue)
	}
}

func TestValidateAndAddDefaults_RateLimit(t *testing.T) {
	cnf := Configuration{
		WorkflowEngine: WorkflowEngineConfig{Url: "http://workflow-engine:8089"},
		Redis:          RedisConfig{Dns: "localhost:6379"},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: ptr.Float64(10),
		},
	}

	if err := cnf.validateAndAddDefaults(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cnf.RateLimit.Burst == nil || *cnf.RateLimit.Burst != 20 {
		t.Errorf("Expected derived burst of 20, got %v", cnf.RateLimit.Burst)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		t.Error("Expected default cleanup interval to be set")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "veriflow.json")
	if err != nil {
		t.Fatalf("Unable to create temporary file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	sampleConfig := Configuration{
		ProjectName: "Temp Project",
		WorkflowEngine: WorkflowEngineConfig{
			Url: "http://workflow-engine:8089",
		},
		Redis: RedisConfig{
			Dns: "localhost:6379",
		},
	}
	if err := json.NewEncoder(tmpFile).Encode(&sampleConfig); err != nil {
		t.Fatalf("Unable to write sample config: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("Unable to close temporary file: %v", err)
	}

	if err := loadConfigFromFile(tmpFile.Name()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	loaded, err := Fetch()
	if err != nil {
		t.Fatalf("Expected config to be stored, got %v", err)
	}
	if loaded.ProjectName != "Temp Project" {
		t.Errorf("Expected project name from file, got %s", loaded.ProjectName)
	}
	if loaded.Pinata.GatewayURL != DefaultPinataGatewayURL {
		t.Errorf("Expected default gateway URL, got %s", loaded.Pinata.GatewayURL)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("VERIFLOW_WORKFLOW_ENGINE_URL", "http://engine.env:9000")
	t.Setenv("VERIFLOW_REDIS_DNS", "localhost:6379")
	t.Setenv("VERIFLOW_SERVER_PORT", "9123")

	if err := loadConfigFromFile("does-not-exist.json"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	loaded, err := Fetch()
	if err != nil {
		t.Fatalf("Expected config to be stored, got %v", err)
	}
	if loaded.WorkflowEngine.Url != "http://engine.env:9000" {
		t.Errorf("Expected env override for workflow engine URL, got %s", loaded.WorkflowEngine.Url)
	}
	if loaded.Server.Port != "9123" {
		t.Errorf("Expected env override for port, got %s", loaded.Server.Port)
	}
}

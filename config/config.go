/*
Copyright 2025 Veriflow Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "4100"

	DefaultPinataAPIURL     = "https://api.pinata.cloud"
	DefaultPinataGatewayURL = "https://gateway.pinata.cloud"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"VERIFLOW_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"VERIFLOW_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"VERIFLOW_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"VERIFLOW_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"VERIFLOW_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"VERIFLOW_SERVER_PORT"`
}

type PinataConfig struct {
	APIURL       string `json:"api_url" envconfig:"VERIFLOW_PINATA_API_URL"`
	GatewayURL   string `json:"gateway_url" envconfig:"VERIFLOW_PINATA_GATEWAY_URL"`
	APIKey       string `json:"api_key" envconfig:"VERIFLOW_PINATA_API_KEY"`
	SecretAPIKey string `json:"secret_api_key" envconfig:"VERIFLOW_PINATA_SECRET_API_KEY"`
	TimeoutSec   int    `json:"timeout_sec" envconfig:"VERIFLOW_PINATA_TIMEOUT_SEC"`
}

type WorkflowEngineConfig struct {
	Url        string `json:"url" envconfig:"VERIFLOW_WORKFLOW_ENGINE_URL"`
	APIKey     string `json:"api_key" envconfig:"VERIFLOW_WORKFLOW_ENGINE_API_KEY"`
	TimeoutSec int    `json:"timeout_sec" envconfig:"VERIFLOW_WORKFLOW_ENGINE_TIMEOUT_SEC"`
}

type UploadConfig struct {
	MaxSizeBytes int64    `json:"max_size_bytes" envconfig:"VERIFLOW_UPLOAD_MAX_SIZE_BYTES"`
	AllowedTypes []string `json:"allowed_types" envconfig:"VERIFLOW_UPLOAD_ALLOWED_TYPES"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"VERIFLOW_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"VERIFLOW_REDIS_SKIP_TLS_VERIFY"`
}

type MirrorConfig struct {
	Enabled            bool   `json:"enabled" envconfig:"VERIFLOW_MIRROR_ENABLED"`
	AwsAccessKeyId     string `json:"aws_access_key_id" envconfig:"VERIFLOW_MIRROR_AWS_ACCESS_KEY_ID"`
	AwsSecretAccessKey string `json:"aws_secret_access_key" envconfig:"VERIFLOW_MIRROR_AWS_SECRET_ACCESS_KEY"`
	S3BucketName       string `json:"s3_bucket_name" envconfig:"VERIFLOW_MIRROR_S3_BUCKET_NAME"`
	S3Region           string `json:"s3_region" envconfig:"VERIFLOW_MIRROR_S3_REGION"`
}

type QueueConfig struct {
	WebhookQueue     string `json:"webhook_queue" envconfig:"VERIFLOW_QUEUE_WEBHOOK_QUEUE"`
	StatusSyncQueue  string `json:"status_sync_queue" envconfig:"VERIFLOW_QUEUE_STATUS_SYNC_QUEUE"`
	MaxRetryAttempts int    `json:"max_retry_attempts" envconfig:"VERIFLOW_QUEUE_MAX_RETRY_ATTEMPTS"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"VERIFLOW_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"VERIFLOW_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"VERIFLOW_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName     string               `json:"project_name" envconfig:"VERIFLOW_PROJECT_NAME"`
	EnableTelemetry bool                 `json:"enable_telemetry" envconfig:"VERIFLOW_ENABLE_TELEMETRY"`
	Server          ServerConfig         `json:"server"`
	Pinata          PinataConfig         `json:"pinata"`
	WorkflowEngine  WorkflowEngineConfig `json:"workflow_engine"`
	Upload          UploadConfig         `json:"upload"`
	Redis           RedisConfig          `json:"redis"`
	Mirror          MirrorConfig         `json:"mirror"`
	Queue           QueueConfig          `json:"queue"`
	Notification    Notification         `json:"notification"`
	RateLimit       RateLimitConfig      `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("veriflow", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called veriflow.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Veriflow Server"
	}

	if cnf.WorkflowEngine.Url == "" {
		log.Println("Error: Workflow engine URL is empty. It's a required field.")
		return errors.New("workflow engine URL is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	if cnf.Pinata.APIURL == "" {
		cnf.Pinata.APIURL = DefaultPinataAPIURL
	}
	if cnf.Pinata.GatewayURL == "" {
		cnf.Pinata.GatewayURL = DefaultPinataGatewayURL
	}
	if cnf.Pinata.TimeoutSec == 0 {
		cnf.Pinata.TimeoutSec = 30
	}
	if cnf.WorkflowEngine.TimeoutSec == 0 {
		cnf.WorkflowEngine.TimeoutSec = 30
	}

	if cnf.Upload.MaxSizeBytes == 0 {
		cnf.Upload.MaxSizeBytes = 10 << 20 // 10 MiB
	}
	if len(cnf.Upload.AllowedTypes) == 0 {
		cnf.Upload.AllowedTypes = []string{"id_document", "selfie", "proof_of_address"}
	}

	if cnf.Queue.WebhookQueue == "" {
		cnf.Queue.WebhookQueue = "new:webhook"
	}
	if cnf.Queue.StatusSyncQueue == "" {
		cnf.Queue.StatusSyncQueue = "kyc:status-sync"
	}
	if cnf.Queue.MaxRetryAttempts == 0 {
		cnf.Queue.MaxRetryAttempts = 10
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.WorkflowEngine.Url = strings.TrimSpace(cnf.WorkflowEngine.Url)
	cnf.Pinata.APIURL = strings.TrimSpace(cnf.Pinata.APIURL)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if mockConfig.Upload.MaxSizeBytes == 0 {
		mockConfig.Upload.MaxSizeBytes = 10 << 20
	}
	if len(mockConfig.Upload.AllowedTypes) == 0 {
		mockConfig.Upload.AllowedTypes = []string{"id_document", "selfie", "proof_of_address"}
	}
	if mockConfig.Queue.WebhookQueue == "" {
		mockConfig.Queue.WebhookQueue = "new:webhook"
	}
	if mockConfig.Queue.StatusSyncQueue == "" {
		mockConfig.Queue.StatusSyncQueue = "kyc:status-sync"
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}

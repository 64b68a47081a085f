package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/veriflowhq/veriflow/config"
	"github.com/veriflowhq/veriflow/internal/request"
	"github.com/veriflowhq/veriflow/model"
)

// StartRequest carries the fields the engine needs to open a verification workflow.
type StartRequest struct {
	UserID      string             `json:"userId"`
	UserAddress string             `json:"userAddress"`
	Documents   model.DocumentRefs `json:"documents"`
}

// StartResult is the engine's answer to a workflow start call. Success=false with an
// Error message is a reported failure; a transport error is returned separately.
type StartResult struct {
	Success    bool   `json:"success"`
	WorkflowID string `json:"workflowId"`
	Error      string `json:"error,omitempty"`
}

// Service is the contract the gateway consumes from the orchestration engine.
type Service interface {
	Initialize(ctx context.Context) error
	StartKYCWorkflow(ctx context.Context, req StartRequest) (*StartResult, error)
	GetWorkflow(ctx context.Context, workflowID string) (*model.KYCWorkflow, error)
}

type engineClient struct {
	conf       config.WorkflowEngineConfig
	httpClient *http.Client

	mu          sync.Mutex
	initialized bool
}

// NewService creates an HTTP client for the workflow orchestration engine.
func NewService(conf config.WorkflowEngineConfig) Service {
	return &engineClient{
		conf: conf,
		httpClient: &http.Client{
			Timeout: time.Duration(conf.TimeoutSec) * time.Second,
		},
	}
}

var (
	instance     Service
	instanceOnce sync.Once
)

// GetInstance returns the process-wide engine client, creating it from the loaded
// configuration on first use. Initialization of the connection itself happens in
// Initialize and is idempotent, so concurrent callers are safe.
func GetInstance() (Service, error) {
	var err error
	instanceOnce.Do(func() {
		var conf *config.Configuration
		conf, err = config.Fetch()
		if err != nil {
			return
		}
		instance = NewService(conf.WorkflowEngine)
	})
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, errors.New("workflow service is not configured")
	}
	return instance, nil
}

// SetInstance replaces the process-wide engine client. Intended for wiring a mock in
// tests and for the CLI to install a pre-built client.
func SetInstance(s Service) {
	instanceOnce.Do(func() {})
	instance = s
}

// Initialize verifies connectivity with the engine's health endpoint. Repeated calls
// after a successful check are no-ops.
func (e *engineClient) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.conf.Url+"/v1/health", nil)
	if err != nil {
		return errors.Wrap(err, "failed to create health request")
	}
	e.addAuth(req)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "workflow engine is unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("workflow engine health check returned status %d", resp.StatusCode)
	}

	e.initialized = true
	logrus.Info("workflow engine connection initialized")
	return nil
}

// StartKYCWorkflow asks the engine to open a verification workflow for a user.
func (e *engineClient) StartKYCWorkflow(ctx context.Context, startReq StartRequest) (*StartResult, error) {
	payload, err := request.ToJsonReq(&startReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode workflow start request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.conf.Url+"/v1/workflows", payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create workflow start request")
	}
	e.addAuth(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "workflow start request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, errors.Errorf("workflow engine returned status %d", resp.StatusCode)
	}

	var result StartResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "failed to decode workflow start response")
	}
	return &result, nil
}

// GetWorkflow fetches the current state of a workflow from the engine.
func (e *engineClient) GetWorkflow(ctx context.Context, workflowID string) (*model.KYCWorkflow, error) {
	url := fmt.Sprintf("%s/v1/workflows/%s", e.conf.Url, workflowID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create workflow fetch request")
	}
	e.addAuth(req)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "workflow fetch request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrWorkflowNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("workflow engine returned status %d", resp.StatusCode)
	}

	var wf model.KYCWorkflow
	if err := json.NewDecoder(resp.Body).Decode(&wf); err != nil {
		return nil, errors.Wrap(err, "failed to decode workflow state")
	}
	return &wf, nil
}

// ErrWorkflowNotFound is returned when the engine has no workflow for the given id.
var ErrWorkflowNotFound = errors.New("workflow not found")

func (e *engineClient) addAuth(req *http.Request) {
	if e.conf.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.conf.APIKey)
	}
}

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

package veriflow

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	"github.com/veriflowhq/veriflow/config"
	"github.com/veriflowhq/veriflow/internal/apierror"
	"github.com/veriflowhq/veriflow/ipfs"
	"github.com/veriflowhq/veriflow/model"
	"github.com/veriflowhq/veriflow/workflow"
	"github.com/veriflowhq/veriflow/workflow/adapters"
)

// mockStore is an in-memory ipfs.DocumentStore for service-level tests.
type mockStore struct {
	validation ipfs.ValidationResult
	pinHash    string
	pinErr     error
	pinned     []ipfs.DocumentFile
}

func (m *mockStore) ValidateFile(file ipfs.DocumentFile) ipfs.ValidationResult {
	return m.validation
}

func (m *mockStore) Pin(ctx context.Context, file ipfs.DocumentFile, metadata map[string]string) (string, error) {
	m.pinned = append(m.pinned, file)
	if m.pinErr != nil {
		return "", m.pinErr
	}
	return m.pinHash, nil
}

func (m *mockStore) GatewayURL(hash string) string {
	return "https://gateway.pinata.cloud/ipfs/" + hash
}

func setupVeriflow(t *testing.T, store ipfs.DocumentStore, engine workflow.Service) *Veriflow {
	t.Helper()
	mr := miniredis.RunT(t)
	config.MockConfig(&config.Configuration{
		Redis:          config.RedisConfig{Dns: mr.Addr()},
		WorkflowEngine: config.WorkflowEngineConfig{Url: "http://workflow-engine:8089"},
	})

	v, err := NewVeriflow(store, engine)
	if err != nil {
		t.Fatalf("failed to set up veriflow: %v", err)
	}
	return v
}

func validStartRequest() workflow.StartRequest {
	return workflow.StartRequest{
		UserID:      "user_1",
		UserAddress: "0x32Be343B94f860124dC4fEe278FDCBD38C102D88",
		Documents: model.DocumentRefs{
			IDDocument: "QmIdDoc",
			Selfie:     "QmSelfie",
		},
	}
}

func TestStartKYCWorkflow_Success(t *testing.T) {
	engine := adapters.NewMockEngine()
	engine.StartResult = &workflow.StartResult{Success: true, WorkflowID: "wf_1234"}
	v := setupVeriflow(t, &mockStore{}, engine)

	wf, err := v.StartKYCWorkflow(context.Background(), validStartRequest())
	assert.NoError(t, err)
	assert.Equal(t, "wf_1234", wf.WorkflowID)
	assert.Equal(t, model.KYCStatusInitiated, wf.Status)
	assert.True(t, engine.Initialized)
	assert.Len(t, engine.StartCalls, 1)
}

func TestStartKYCWorkflow_EngineReportsFailure(t *testing.T) {
	engine := adapters.NewMockEngine()
	engine.StartResult = &workflow.StartResult{Success: false, Error: "documents could not be resolved"}
	v := setupVeriflow(t, &mockStore{}, engine)

	_, err := v.StartKYCWorkflow(context.Background(), validStartRequest())
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrUpstream, apiErr.Code)
	assert.Equal(t, "documents could not be resolved", apiErr.Message)
}

func TestStartKYCWorkflow_EngineFailureWithoutMessage(t *testing.T) {
	engine := adapters.NewMockEngine()
	engine.StartResult = &workflow.StartResult{Success: false}
	v := setupVeriflow(t, &mockStore{}, engine)

	_, err := v.StartKYCWorkflow(context.Background(), validStartRequest())
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, DefaultKYCFailureMessage, apiErr.Message)
}

func TestStartKYCWorkflow_EngineUnreachable(t *testing.T) {
	engine := adapters.NewMockEngine()
	engine.StartErr = assert.AnError
	v := setupVeriflow(t, &mockStore{}, engine)

	_, err := v.StartKYCWorkflow(context.Background(), validStartRequest())
	assert.Error(t, err)
	assert.Equal(t, 500, apierror.MapErrorToHTTPStatus(err))
}

func TestGetKYCWorkflow_CachesEngineReads(t *testing.T) {
	engine := adapters.NewMockEngine()
	engine.Workflow = &model.KYCWorkflow{
		WorkflowID: "wf_1234",
		Status:     model.KYCStatusInProgress,
	}
	v := setupVeriflow(t, &mockStore{}, engine)

	wf, err := v.GetKYCWorkflow(context.Background(), "wf_1234")
	assert.NoError(t, err)
	assert.Equal(t, "wf_1234", wf.WorkflowID)

	// second read must come from the cache even if the engine now errors
	engine.GetErr = assert.AnError
	wf, err = v.GetKYCWorkflow(context.Background(), "wf_1234")
	assert.NoError(t, err)
	assert.Equal(t, "wf_1234", wf.WorkflowID)
}

func TestGetKYCWorkflow_NotFound(t *testing.T) {
	engine := adapters.NewMockEngine()
	engine.GetErr = workflow.ErrWorkflowNotFound
	v := setupVeriflow(t, &mockStore{}, engine)

	_, err := v.GetKYCWorkflow(context.Background(), "missing")
	assert.Error(t, err)
	assert.Equal(t, 404, apierror.MapErrorToHTTPStatus(err))
}

func TestProcessStatusSync_StillRunning(t *testing.T) {
	engine := adapters.NewMockEngine()
	engine.Workflow = &model.KYCWorkflow{
		WorkflowID: "wf_1234",
		Status:     model.KYCStatusInProgress,
	}
	v := setupVeriflow(t, &mockStore{}, engine)

	payload, _ := json.Marshal(StatusSyncPayload{WorkflowID: "wf_1234"})
	task := asynq.NewTask("kyc:status-sync", payload)

	err := v.ProcessStatusSync(context.Background(), task)
	assert.ErrorIs(t, err, ErrWorkflowStillRunning)
}

func TestProcessStatusSync_TerminalStateCompletesTask(t *testing.T) {
	engine := adapters.NewMockEngine()
	engine.Workflow = &model.KYCWorkflow{
		WorkflowID: "wf_1234",
		Status:     model.KYCStatusVerified,
	}
	v := setupVeriflow(t, &mockStore{}, engine)

	payload, _ := json.Marshal(StatusSyncPayload{WorkflowID: "wf_1234"})
	task := asynq.NewTask("kyc:status-sync", payload)

	assert.NoError(t, v.ProcessStatusSync(context.Background(), task))

	// the refreshed snapshot is served from the cache afterwards
	wf, err := v.GetKYCWorkflow(context.Background(), "wf_1234")
	assert.NoError(t, err)
	assert.Equal(t, model.KYCStatusVerified, wf.Status)
}

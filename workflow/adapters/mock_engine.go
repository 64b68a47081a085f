package adapters

import (
	"context"
	"time"

	"github.com/veriflowhq/veriflow/model"
	"github.com/veriflowhq/veriflow/workflow"
)

// MockEngine is an in-memory workflow.Service used in tests and local development.
type MockEngine struct {
	InitializeErr error
	StartResult   *workflow.StartResult
	StartErr      error
	Workflow      *model.KYCWorkflow
	GetErr        error

	Initialized bool
	StartCalls  []workflow.StartRequest
}

func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

func (m *MockEngine) Initialize(ctx context.Context) error {
	if m.InitializeErr != nil {
		return m.InitializeErr
	}
	m.Initialized = true
	return nil
}

func (m *MockEngine) StartKYCWorkflow(ctx context.Context, req workflow.StartRequest) (*workflow.StartResult, error) {
	m.StartCalls = append(m.StartCalls, req)

	if m.StartErr != nil {
		return nil, m.StartErr
	}
	if m.StartResult != nil {
		return m.StartResult, nil
	}
	return &workflow.StartResult{
		Success:    true,
		WorkflowID: model.GenerateUUIDWithSuffix("wf"),
	}, nil
}

func (m *MockEngine) GetWorkflow(ctx context.Context, workflowID string) (*model.KYCWorkflow, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.Workflow != nil {
		return m.Workflow, nil
	}
	return &model.KYCWorkflow{
		WorkflowID: workflowID,
		Status:     model.KYCStatusInProgress,
		Steps: []model.KYCStep{
			{
				StepID:     model.GenerateUUIDWithSuffix("step"),
				WorkflowID: workflowID,
				StepName:   "document_verification",
				Status:     model.StepStatusSubmitted,
				CreatedAt:  time.Now(),
				UpdatedAt:  time.Now(),
			},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

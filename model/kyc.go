package model

import (
	"time"
)

// KYCWorkflowStatus represents the overall status of a KYC workflow
type KYCWorkflowStatus string

const (
	KYCStatusInitiated  KYCWorkflowStatus = "initiated"
	KYCStatusPending    KYCWorkflowStatus = "PENDING"
	KYCStatusInProgress KYCWorkflowStatus = "IN_PROGRESS"
	KYCStatusVerified   KYCWorkflowStatus = "VERIFIED"
	KYCStatusFailed     KYCWorkflowStatus = "FAILED"
	KYCStatusReview     KYCWorkflowStatus = "REVIEW_NEEDED"
)

// Terminal reports whether the workflow has reached a final state on the engine.
func (s KYCWorkflowStatus) Terminal() bool {
	return s == KYCStatusVerified || s == KYCStatusFailed
}

// DocumentRefs holds the content addresses of the documents a KYC workflow runs on.
type DocumentRefs struct {
	IDDocument string `json:"idDocument"`
	Selfie     string `json:"selfie"`
}

// KYCWorkflow represents a long-running verification process for a user,
// as reported by the external orchestration engine.
type KYCWorkflow struct {
	WorkflowID  string                 `json:"workflowId"`
	UserID      string                 `json:"userId"`
	UserAddress string                 `json:"userAddress"`
	Status      KYCWorkflowStatus      `json:"status"`
	Documents   DocumentRefs           `json:"documents"`
	Steps       []KYCStep              `json:"steps,omitempty"`
	MetaData    map[string]interface{} `json:"metaData,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// KYCStepStatus represents the status of a single verification step
type KYCStepStatus string

const (
	StepStatusPending   KYCStepStatus = "PENDING"
	StepStatusSubmitted KYCStepStatus = "SUBMITTED"
	StepStatusPassed    KYCStepStatus = "PASSED"
	StepStatusFailed    KYCStepStatus = "FAILED"
)

// KYCStep represents a single check within a workflow (e.g., "document_verification")
type KYCStep struct {
	StepID     string                 `json:"stepId"`
	WorkflowID string                 `json:"workflowId"`
	StepName   string                 `json:"stepName"`
	Status     KYCStepStatus          `json:"status"`
	Result     map[string]interface{} `json:"result,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

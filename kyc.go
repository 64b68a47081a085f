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
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/veriflowhq/veriflow/config"
	"github.com/veriflowhq/veriflow/internal/apierror"
	"github.com/veriflowhq/veriflow/model"
	"github.com/veriflowhq/veriflow/workflow"
)

const workflowCacheTTL = 30 * time.Second

// DefaultKYCFailureMessage is returned when the engine fails without a reason.
const DefaultKYCFailureMessage = "Failed to initiate KYC workflow"

func workflowCacheKey(workflowID string) string {
	return fmt.Sprintf("workflow:%s", workflowID)
}

// StartKYCWorkflow ensures the engine connection is initialized and asks it to open
// a verification workflow. A failure the engine reports and a failure to reach the
// engine both surface as internal errors carrying the most specific message known.
func (v *Veriflow) StartKYCWorkflow(ctx context.Context, req workflow.StartRequest) (*model.KYCWorkflow, error) {
	ctx, span := otel.Tracer("veriflow.kyc").Start(ctx, "Start KYC Workflow")
	defer span.End()

	if err := v.engine.Initialize(ctx); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, apierror.Message(err, DefaultKYCFailureMessage), err)
	}

	result, err := v.engine.StartKYCWorkflow(ctx, req)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUpstream, apierror.Message(err, DefaultKYCFailureMessage), err)
	}
	if !result.Success {
		message := result.Error
		if message == "" {
			message = DefaultKYCFailureMessage
		}
		return nil, apierror.NewAPIError(apierror.ErrUpstream, message, nil)
	}

	now := time.Now()
	wf := &model.KYCWorkflow{
		WorkflowID:  result.WorkflowID,
		UserID:      req.UserID,
		UserAddress: req.UserAddress,
		Status:      model.KYCStatusInitiated,
		Documents:   req.Documents,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := SendWebhook(NewWebhook{Event: EventKYCInitiated, Payload: wf}); err != nil {
		logrus.Error(err)
	}

	if v.queue != nil {
		conf, confErr := config.Fetch()
		maxRetry := 10
		if confErr == nil {
			maxRetry = conf.Queue.MaxRetryAttempts
		}
		if err := v.queue.queueStatusSync(wf.WorkflowID, maxRetry); err != nil {
			logrus.Errorf("failed to queue status sync for %s: %v", wf.WorkflowID, err)
		}
	}

	return wf, nil
}

// GetKYCWorkflow returns the current state of a workflow, serving recent reads from
// the cache to spare the engine a round-trip.
func (v *Veriflow) GetKYCWorkflow(ctx context.Context, workflowID string) (*model.KYCWorkflow, error) {
	ctx, span := otel.Tracer("veriflow.kyc").Start(ctx, "Get KYC Workflow")
	defer span.End()

	var cached model.KYCWorkflow
	if v.cache != nil {
		if err := v.cache.Get(ctx, workflowCacheKey(workflowID), &cached); err != nil {
			logrus.Error(err)
		}
		if cached.WorkflowID != "" {
			return &cached, nil
		}
	}

	wf, err := v.engine.GetWorkflow(ctx, workflowID)
	if err != nil {
		if errors.Is(err, workflow.ErrWorkflowNotFound) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "workflow not found", nil)
		}
		return nil, apierror.NewAPIError(apierror.ErrUpstream, apierror.Message(err, "failed to fetch workflow"), err)
	}

	if v.cache != nil {
		if err := v.cache.Set(ctx, workflowCacheKey(workflowID), wf, workflowCacheTTL); err != nil {
			logrus.Error(err)
		}
	}
	return wf, nil
}

// ErrWorkflowStillRunning keeps a status-sync task retrying until the engine reports
// a terminal state.
var ErrWorkflowStillRunning = errors.New("workflow still in progress")

// ProcessStatusSync refreshes one workflow's state from the engine. Terminal states
// emit a kyc.completed webhook and finish the task; anything else returns an error
// so asynq retries the task later.
func (v *Veriflow) ProcessStatusSync(ctx context.Context, task *asynq.Task) error {
	ctx, span := otel.Tracer("veriflow.kyc.worker").Start(ctx, "Sync Workflow Status From Engine")
	defer span.End()

	var payload StatusSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}

	wf, err := v.engine.GetWorkflow(ctx, payload.WorkflowID)
	if err != nil {
		logrus.Errorf("status sync: failed to fetch workflow %s: %v", payload.WorkflowID, err)
		return err
	}

	if v.cache != nil {
		if err := v.cache.Set(ctx, workflowCacheKey(wf.WorkflowID), wf, workflowCacheTTL); err != nil {
			logrus.Error(err)
		}
	}

	if !wf.Status.Terminal() {
		return ErrWorkflowStillRunning
	}

	if err := SendWebhook(NewWebhook{Event: EventKYCCompleted, Payload: wf}); err != nil {
		logrus.Error(err)
	}
	logrus.Infof("workflow %s reached terminal status %s", wf.WorkflowID, wf.Status)
	return nil
}

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
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/veriflowhq/veriflow/config"
)

func webhookConfig(redisAddr, webhookURL string) *config.Configuration {
	cnf := &config.Configuration{
		Redis: config.RedisConfig{Dns: redisAddr},
	}
	cnf.Notification.Webhook.Url = webhookURL
	return cnf
}

func TestSendWebhook(t *testing.T) {
	mr := miniredis.RunT(t)
	config.MockConfig(webhookConfig(mr.Addr(), "http://localhost:5001/webhook"))

	err := SendWebhook(NewWebhook{
		Event: EventKYCInitiated,
		Payload: map[string]interface{}{
			"workflowId": "wf_1234",
		},
	})
	assert.NoError(t, err)

	// Verify that the task was enqueued
	tasks := mr.Keys()
	assert.NotEmpty(t, tasks)
}

func TestSendWebhook_NoURLConfigured(t *testing.T) {
	mr := miniredis.RunT(t)
	config.MockConfig(webhookConfig(mr.Addr(), ""))

	err := SendWebhook(NewWebhook{Event: EventKYCInitiated})
	assert.NoError(t, err)
	assert.Empty(t, mr.Keys())
}

func TestProcessWebhook(t *testing.T) {
	mr := miniredis.RunT(t)
	config.MockConfig(webhookConfig(mr.Addr(), "http://localhost:5001/webhook"))

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var received NewWebhook
	httpmock.RegisterResponder("POST", "http://localhost:5001/webhook",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(req.Body).Decode(&received))
			return httpmock.NewStringResponse(http.StatusOK, "ok"), nil
		})

	payload, err := json.Marshal(NewWebhook{
		Event: EventKYCCompleted,
		Payload: map[string]interface{}{
			"workflowId": "wf_1234",
			"status":     "VERIFIED",
		},
	})
	assert.NoError(t, err)

	task := asynq.NewTask("new:webhook", payload)
	assert.NoError(t, ProcessWebhook(context.Background(), task))

	assert.Equal(t, EventKYCCompleted, received.Event)
	data := received.Payload.(map[string]interface{})
	assert.Equal(t, "wf_1234", data["workflowId"])
	assert.Equal(t, "VERIFIED", data["status"])
}

func TestProcessWebhook_RemoteFailureDoesNotRetry(t *testing.T) {
	mr := miniredis.RunT(t)
	config.MockConfig(webhookConfig(mr.Addr(), "http://localhost:5001/webhook"))

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://localhost:5001/webhook",
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	payload, err := json.Marshal(NewWebhook{Event: EventDocumentPinned})
	assert.NoError(t, err)

	// a failed delivery is logged, not returned, so asynq does not retry it
	task := asynq.NewTask("new:webhook", payload)
	assert.NoError(t, ProcessWebhook(context.Background(), task))
}

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
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/veriflowhq/veriflow/config"
	redis_db "github.com/veriflowhq/veriflow/internal/redis-db"
)

// Queue wraps the asynq client used to hand work to the background workers.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// StatusSyncPayload is the task payload for a workflow status refresh.
type StatusSyncPayload struct {
	WorkflowID string `json:"workflowId"`
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{
		Addr:      redisOption.Addr,
		Password:  redisOption.Password,
		DB:        redisOption.DB,
		TLSConfig: redisOption.TLSConfig,
	}
	return &Queue{
		Client:    asynq.NewClient(queueOptions),
		Inspector: asynq.NewInspector(queueOptions),
	}
}

// queueStatusSync schedules a status refresh for a workflow. The first check runs
// after a short delay to give the engine time to move past its opening steps; the
// worker keeps the task alive with retries while the workflow stays non-terminal.
func (q *Queue) queueStatusSync(workflowID string, maxRetry int) error {
	payload, err := json.Marshal(StatusSyncPayload{WorkflowID: workflowID})
	if err != nil {
		return err
	}

	conf, err := config.Fetch()
	if err != nil {
		return err
	}

	task := asynq.NewTask(conf.Queue.StatusSyncQueue, payload,
		asynq.Queue(conf.Queue.StatusSyncQueue),
		asynq.MaxRetry(maxRetry),
		asynq.ProcessIn(30*time.Second),
	)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		return err
	}
	log.Printf(" [*] Queued status sync for %s (task %s)", workflowID, info.ID)
	return nil
}

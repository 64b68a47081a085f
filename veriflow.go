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
	"github.com/veriflowhq/veriflow/cache"
	"github.com/veriflowhq/veriflow/config"
	"github.com/veriflowhq/veriflow/internal/mirror"
	"github.com/veriflowhq/veriflow/ipfs"
	"github.com/veriflowhq/veriflow/workflow"
)

// Veriflow wires the gateway's collaborators: the content-addressed document store,
// the workflow orchestration engine, the task queue and the status cache.
type Veriflow struct {
	store  ipfs.DocumentStore
	engine workflow.Service
	queue  *Queue
	cache  cache.Cache
	mirror *mirror.Mirror
}

// NewVeriflow builds a service instance around the given collaborators, creating the
// queue, cache and document mirror from the loaded configuration.
func NewVeriflow(store ipfs.DocumentStore, engine workflow.Service) (*Veriflow, error) {
	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	newCache, err := cache.NewCache()
	if err != nil {
		return nil, err
	}

	docMirror, err := mirror.New(conf.Mirror)
	if err != nil {
		return nil, err
	}

	return &Veriflow{
		store:  store,
		engine: engine,
		queue:  NewQueue(conf),
		cache:  newCache,
		mirror: docMirror,
	}, nil
}

// Store exposes the document store for callers that need validation or gateway URLs.
func (v *Veriflow) Store() ipfs.DocumentStore {
	return v.store
}

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

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/veriflowhq/veriflow/internal/apierror"
	"github.com/veriflowhq/veriflow/ipfs"
)

// DocumentReceipt is returned for a stored document: its content address and a
// gateway URL it can be fetched from.
type DocumentReceipt struct {
	IpfsHash     string `json:"ipfsHash"`
	GatewayURL   string `json:"gatewayUrl"`
	DocumentType string `json:"documentType"`
}

// UploadDocument validates a user-submitted document and pins it to the content-
// addressed store. Validator rejections surface verbatim as client errors; pinning
// failures are internal errors. When a document mirror is configured, a cold copy is
// written in the background after a successful pin.
func (v *Veriflow) UploadDocument(ctx context.Context, file ipfs.DocumentFile, documentType string) (*DocumentReceipt, error) {
	ctx, span := otel.Tracer("veriflow.upload").Start(ctx, "Upload Document")
	defer span.End()

	result := v.store.ValidateFile(file)
	if !result.IsValid {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, result.Error, nil)
	}

	hash, err := v.store.Pin(ctx, file, map[string]string{"type": documentType})
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUpstream, "Failed to store document", err)
	}

	if v.mirror != nil && v.mirror.Enabled() {
		content := file.Content
		go func() {
			if err := v.mirror.Store(context.Background(), documentType, hash, content); err != nil {
				logrus.Errorf("document mirror failed for %s: %v", hash, err)
			}
		}()
	}

	if err := SendWebhook(NewWebhook{
		Event: EventDocumentPinned,
		Payload: map[string]interface{}{
			"ipfsHash":     hash,
			"documentType": documentType,
		},
	}); err != nil {
		logrus.Error(err)
	}

	return &DocumentReceipt{
		IpfsHash:     hash,
		GatewayURL:   v.store.GatewayURL(hash),
		DocumentType: documentType,
	}, nil
}

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

package model

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/veriflowhq/veriflow/model"
	"github.com/veriflowhq/veriflow/workflow"
)

// Fixed validation messages. The handlers return these verbatim, so tests and API
// consumers can match on them.
const (
	MsgNoFile           = "No file provided"
	MsgMissingFields    = "Missing required fields: userId, userAddress, documents"
	MsgMissingDocuments = "Missing required documents: idDocument and selfie are required"
	MsgInvalidAddress   = "Invalid userAddress: expected a 0x-prefixed 40-character hex address"
)

// ErrCodeUploadFailed is the error code both onboarding endpoints report.
const ErrCodeUploadFailed = "UPLOAD_FAILED"

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// KYCDocuments carries the content addresses of the two required documents.
type KYCDocuments struct {
	IDDocument string `json:"idDocument"`
	Selfie     string `json:"selfie"`
}

// InitiateKYC is the request body of POST /api/kyc/initiate.
type InitiateKYC struct {
	UserID      string        `json:"userId"`
	UserAddress string        `json:"userAddress"`
	Documents   *KYCDocuments `json:"documents"`
}

// ValidateInitiateKYC checks the request in a fixed order: top-level fields first,
// then the required documents, then the address format. The first failure wins.
func (r *InitiateKYC) ValidateInitiateKYC() error {
	if r.UserID == "" || r.UserAddress == "" || r.Documents == nil {
		return errors.New(MsgMissingFields)
	}

	if err := validation.ValidateStruct(r.Documents,
		validation.Field(&r.Documents.IDDocument, validation.Required),
		validation.Field(&r.Documents.Selfie, validation.Required),
	); err != nil {
		return errors.New(MsgMissingDocuments)
	}

	if err := validation.Validate(r.UserAddress,
		validation.Match(model.EthereumAddressPattern),
	); err != nil {
		return errors.New(MsgInvalidAddress)
	}

	return nil
}

// ToStartRequest maps a validated request onto the workflow engine contract.
func (r *InitiateKYC) ToStartRequest() workflow.StartRequest {
	return workflow.StartRequest{
		UserID:      r.UserID,
		UserAddress: r.UserAddress,
		Documents: model.DocumentRefs{
			IDDocument: r.Documents.IDDocument,
			Selfie:     r.Documents.Selfie,
		},
	}
}

// ValidateDocumentType checks the upload type tag against the configured allow-list.
func ValidateDocumentType(documentType string, allowed []string) error {
	for _, t := range allowed {
		if documentType == t {
			return nil
		}
	}
	return fmt.Errorf("Invalid file type: %q. Allowed types: %s", documentType, strings.Join(allowed, ", "))
}

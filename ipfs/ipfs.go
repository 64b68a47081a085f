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

package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/veriflowhq/veriflow/config"
	"github.com/veriflowhq/veriflow/internal/request"
)

// DocumentFile is a user-submitted document held in memory for the duration of a
// request. Uploads are size-capped before they reach this type.
type DocumentFile struct {
	Name    string
	Content []byte
}

// ValidationResult mirrors the validator contract of the storage service:
// a pass/fail flag plus a human-readable reason on failure.
type ValidationResult struct {
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
}

// DocumentStore is the narrow contract the handlers call: validate a file,
// pin it, and resolve a gateway URL for a content address.
type DocumentStore interface {
	ValidateFile(file DocumentFile) ValidationResult
	Pin(ctx context.Context, file DocumentFile, metadata map[string]string) (string, error)
	GatewayURL(hash string) string
}

// pinFileResponse is the payload Pinata returns for a successful pin.
type pinFileResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// allowedContentTypes are the sniffed MIME types accepted for KYC documents.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// Client pins documents to IPFS through a Pinata-compatible HTTP API.
type Client struct {
	conf       config.PinataConfig
	maxSize    int64
	httpClient *http.Client
}

func NewClient(conf config.PinataConfig, upload config.UploadConfig) *Client {
	return &Client{
		conf:    conf,
		maxSize: upload.MaxSizeBytes,
		httpClient: &http.Client{
			Timeout: time.Duration(conf.TimeoutSec) * time.Second,
		},
	}
}

// ValidateFile checks a document before it is pinned: it must be non-empty, within
// the configured size cap, and of an accepted content type. The content type is
// sniffed from the leading bytes, never taken from the filename.
func (c *Client) ValidateFile(file DocumentFile) ValidationResult {
	if len(file.Content) == 0 {
		return ValidationResult{Error: "file is empty"}
	}
	if int64(len(file.Content)) > c.maxSize {
		return ValidationResult{Error: fmt.Sprintf("file exceeds maximum size of %d bytes", c.maxSize)}
	}

	contentType := http.DetectContentType(file.Content)
	if _, ok := allowedContentTypes[contentType]; !ok {
		return ValidationResult{Error: fmt.Sprintf("unsupported document content type: %s", contentType)}
	}

	return ValidationResult{IsValid: true}
}

// Pin uploads a document to the pinning service and returns its content address.
func (c *Client) Pin(ctx context.Context, file DocumentFile, metadata map[string]string) (string, error) {
	fields := map[string]string{}
	if len(metadata) > 0 {
		meta := map[string]interface{}{
			"name":      file.Name,
			"keyvalues": metadata,
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return "", errors.Wrap(err, "failed to encode pin metadata")
		}
		fields["pinataMetadata"] = string(metaJSON)
	}

	body, contentType, err := request.ToMultipartReq(bytes.NewReader(file.Content), file.Name, fields)
	if err != nil {
		return "", errors.Wrap(err, "failed to build pin request")
	}

	url := c.conf.APIURL + "/pinning/pinFileToIPFS"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", errors.Wrap(err, "failed to create pin request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("pinata_api_key", c.conf.APIKey)
	req.Header.Set("pinata_secret_api_key", c.conf.SecretAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "pin request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error interface{} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return "", errors.Errorf("pinning service returned status %d: %v", resp.StatusCode, errBody.Error)
	}

	var pinResp pinFileResponse
	if err := json.NewDecoder(resp.Body).Decode(&pinResp); err != nil {
		return "", errors.Wrap(err, "failed to decode pin response")
	}
	if pinResp.IpfsHash == "" {
		return "", errors.New("pinning service returned an empty content address")
	}

	return pinResp.IpfsHash, nil
}

// GatewayURL resolves a content address to a fetchable gateway URL.
func (c *Client) GatewayURL(hash string) string {
	return fmt.Sprintf("%s/ipfs/%s", c.conf.GatewayURL, hash)
}

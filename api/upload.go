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
package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/veriflowhq/veriflow/api/model"
	"github.com/veriflowhq/veriflow/config"
	"github.com/veriflowhq/veriflow/internal/apierror"
	"github.com/veriflowhq/veriflow/ipfs"
)

// UploadDocument handles POST /api/upload. The multipart body carries the document
// under "file" and its type tag under "type".
func (a Api) UploadDocument(c *gin.Context) {
	conf, err := config.Fetch()
	if err != nil {
		uploadError(c, http.StatusInternalServerError, "Configuration not loaded")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		uploadError(c, http.StatusBadRequest, model2.MsgNoFile)
		return
	}

	documentType := c.PostForm("type")
	if err := model2.ValidateDocumentType(documentType, conf.Upload.AllowedTypes); err != nil {
		uploadError(c, http.StatusBadRequest, err.Error())
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		uploadError(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer func() {
		_ = f.Close()
	}()

	// Read one byte past the cap so oversized files fail validation instead of
	// being silently truncated.
	content, err := io.ReadAll(io.LimitReader(f, conf.Upload.MaxSizeBytes+1))
	if err != nil {
		uploadError(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	receipt, err := a.service.UploadDocument(c.Request.Context(), ipfs.DocumentFile{
		Name:    fileHeader.Filename,
		Content: content,
	}, documentType)
	if err != nil {
		uploadError(c, apierror.MapErrorToHTTPStatus(err), apierror.Message(err, "Failed to store document"))
		return
	}

	c.JSON(http.StatusOK, model2.SuccessResponse{
		Success: true,
		Data: gin.H{
			"ipfsHash":   receipt.IpfsHash,
			"gatewayUrl": receipt.GatewayURL,
		},
	})
}

func uploadError(c *gin.Context, status int, message string) {
	c.JSON(status, model2.ErrorResponse{
		Success: false,
		Error: model2.ErrorDetail{
			Code:    model2.ErrCodeUploadFailed,
			Message: message,
		},
	})
}

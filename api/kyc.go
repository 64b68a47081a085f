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
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/veriflowhq/veriflow/api/model"
	"github.com/veriflowhq/veriflow/internal/apierror"
)

// InitiateKYC handles POST /api/kyc/initiate.
func (a Api) InitiateKYC(c *gin.Context) {
	var req model2.InitiateKYC
	if err := c.ShouldBindJSON(&req); err != nil {
		kycError(c, http.StatusBadRequest, model2.MsgMissingFields)
		return
	}

	if err := req.ValidateInitiateKYC(); err != nil {
		kycError(c, http.StatusBadRequest, err.Error())
		return
	}

	wf, err := a.service.StartKYCWorkflow(c.Request.Context(), req.ToStartRequest())
	if err != nil {
		kycError(c, apierror.MapErrorToHTTPStatus(err), apierror.Message(err, "Failed to initiate KYC workflow"))
		return
	}

	c.JSON(http.StatusOK, model2.SuccessResponse{
		Success: true,
		Data: gin.H{
			"workflowId": wf.WorkflowID,
			"status":     wf.Status,
		},
	})
}

// GetKYCWorkflow handles GET /api/kyc/workflows/:workflow_id.
func (a Api) GetKYCWorkflow(c *gin.Context) {
	workflowID, passed := c.Params.Get("workflow_id")
	if !passed {
		kycError(c, http.StatusBadRequest, "workflow_id is required. pass id in the route /:workflow_id")
		return
	}

	wf, err := a.service.GetKYCWorkflow(c.Request.Context(), workflowID)
	if err != nil {
		kycError(c, apierror.MapErrorToHTTPStatus(err), apierror.Message(err, "Failed to fetch workflow"))
		return
	}

	c.JSON(http.StatusOK, model2.SuccessResponse{
		Success: true,
		Data:    wf,
	})
}

func kycError(c *gin.Context, status int, message string) {
	c.JSON(status, model2.ErrorResponse{
		Success: false,
		Error: model2.ErrorDetail{
			Code:    model2.ErrCodeUploadFailed,
			Message: message,
		},
	})
}

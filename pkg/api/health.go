// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const healthPath = "/health"

// HealthStatus is the liveness check body. It never touches the SMTP server.
type HealthStatus struct {
	Status string `json:"status"`
}

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

func (hc *HealthController) BasePath() string {
	return healthPath
}

func (hc *HealthController) Handlers() []gin.HandlerFunc {
	return nil
}

func (hc *HealthController) Register(rg *gin.RouterGroup) error {
	rg.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthStatus{Status: "healthy"})
	})
	return nil
}

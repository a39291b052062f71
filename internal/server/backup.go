package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ExportBackup(c *gin.Context) {
	snapshot, err := s.backupSvc.Export(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("dairypro-backup-%s.json", snapshot.ExportedAt.Format(dateOnlyLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", payload)
}

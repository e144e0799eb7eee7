package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tracker/internal/dates"
	apperrors "tracker/internal/errors"
	"tracker/internal/services"
)

// maxBackupSize bounds an uploaded backup.
const maxBackupSize = 32 << 20

// BackupHandler handles whole-store export and import
type BackupHandler struct {
	backupService services.BackupServicer
}

// NewBackupHandler creates a new BackupHandler
func NewBackupHandler(backupService services.BackupServicer) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// Export downloads every record as a JSON backup
// @Summary     Export backup
// @Description Download the whole store as a versioned JSON document
// @Tags        backup
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Snapshot "Backup file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /backup/export [get]
func (h *BackupHandler) Export(c *gin.Context) {
	blob, err := h.backupService.ExportJSON(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("tracker-backup-%s.json", dates.Today())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", blob)
}

// Import replaces every record with the content of a backup
// @Summary     Import backup
// @Description Replace the whole store. Accepts a multipart upload in the "file" field or the JSON document as the request body.
// @Tags        backup
// @Accept      json,mpfd
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file false "Backup file"
// @Success     200 {object} map[string]services.ImportResult "Records imported"
// @Failure     400 {object} ErrorResponse "Invalid backup file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /backup/import [post]
func (h *BackupHandler) Import(c *gin.Context) {
	blob, err := readBackup(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.backupService.Import(c.Request.Context(), blob)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": result})
}

// readBackup returns the uploaded file or, failing that, the raw body.
func readBackup(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupSize)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "file is required")
		}
		f, err := header.Open()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidBackup, err)
		}
		defer f.Close()
		return readAll(f)
	}
	return readAll(c.Request.Body)
}

func readAll(r io.Reader) ([]byte, error) {
	blob, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidBackup, err)
	}
	if len(blob) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidBackup, "backup is empty")
	}
	return blob, nil
}

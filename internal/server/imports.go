package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Vivianhuwz/cobrancayb/internal/importer"
	"github.com/Vivianhuwz/cobrancayb/internal/integrity"
)

func (s *Server) ListViolations(c *gin.Context) {
	records, err := s.svc.Snapshot(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	violations := integrity.Validate(records)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"violations": violations,
		"count":      len(violations),
	}})
}

// ImportRecords accepts a multipart upload under the "file" field and
// loads it as a batch. Format is inferred from the file extension.
func (s *Server) ImportRecords(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "invalid_file", "missing upload file"))
		return
	}

	format, err := formatFromName(fileHeader.Filename)
	if err != nil {
		AbortWithError(c, newValidationError("file", "invalid_format", err.Error()))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer f.Close()

	rows, rowErrs, err := importer.Parse(f, format)
	if err != nil {
		AbortWithError(c, newValidationError("file", "invalid_file", err.Error()))
		return
	}

	res, err := s.importer.Import(c.Request.Context(), rows, rowErrs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func formatFromName(name string) (importer.Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return importer.FormatXLSX, nil
	case ".csv":
		return importer.FormatCSV, nil
	default:
		return "", importer.ErrUnsupportedFormat
	}
}

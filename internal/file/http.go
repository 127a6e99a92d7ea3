package file

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/abduss/docshelf/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterRoutes mounts file operations under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/files", handler.listFiles)
	group.POST("/files", handler.uploadFile)
	group.DELETE("/files", handler.clearAll)
	group.GET("/files/:fileID", handler.getFile)
	group.DELETE("/files/:fileID", handler.deleteFile)
	group.PATCH("/files/:fileID/name", handler.renameFile)
	group.PATCH("/files/:fileID/folder", handler.moveFile)
	group.GET("/files/:fileID/download", handler.downloadFile)
	group.GET("/folders/:folderID/files", handler.listFolderFiles)
	group.GET("/maintenance/consistency", handler.checkConsistency)
}

type httpHandler struct {
	service *Service
}

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

type moveRequest struct {
	FolderID *uuid.UUID `json:"folder_id"`
}

func (h *httpHandler) uploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file field is required")
		return
	}

	folderID, ok := optionalUUID(c, c.PostForm("folder_id"), "invalid folder id")
	if !ok {
		return
	}

	// Type is checked before size, as in the service.
	if _, ok := TypeFromName(fileHeader.Filename); !ok {
		apperr.Respond(c, ErrUnsupportedType, "failed to upload file")
		return
	}

	limit := h.service.MaxFileSize()
	if fileHeader.Size > limit {
		apperr.Respond(c, ErrFileTooLarge, "failed to upload file")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "unable to read upload")
		return
	}
	defer src.Close()

	// One byte past the limit is enough for the service to reject it.
	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		badRequest(c, "unable to read upload")
		return
	}

	rec, err := h.service.Upload(c.Request.Context(), UploadInput{
		Filename: fileHeader.Filename,
		Content:  data,
		FolderID: folderID,
	})
	if err != nil {
		apperr.Respond(c, err, "failed to upload file")
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *httpHandler) listFiles(c *gin.Context) {
	folderID, ok := optionalUUID(c, c.Query("folder_id"), "invalid folder id")
	if !ok {
		return
	}

	list, err := h.service.List(c.Request.Context(), ListFilter{Query: c.Query("q"), FolderID: folderID})
	if err != nil {
		apperr.Respond(c, err, "failed to list files")
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": list})
}

func (h *httpHandler) listFolderFiles(c *gin.Context) {
	folderID, err := uuid.Parse(c.Param("folderID"))
	if err != nil {
		badRequest(c, "invalid folder id")
		return
	}

	list, err := h.service.ListByFolder(c.Request.Context(), folderID)
	if err != nil {
		apperr.Respond(c, err, "failed to list files")
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": list})
}

func (h *httpHandler) getFile(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	content, err := h.service.Get(c.Request.Context(), fileID)
	if err != nil {
		apperr.Respond(c, err, "failed to load file")
		return
	}

	if content.Record.Type == TypePDF {
		c.Header("Content-Disposition", contentDisposition("inline", content.Record.DownloadName()))
		c.Data(http.StatusOK, content.Record.Type.ContentType(), content.Data)
		return
	}

	c.JSON(http.StatusOK, gin.H{"file": content.Record, "content": content.Text()})
}

func (h *httpHandler) downloadFile(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	content, err := h.service.Get(c.Request.Context(), fileID)
	if err != nil {
		apperr.Respond(c, err, "failed to download file")
		return
	}

	c.Header("Content-Disposition", contentDisposition("attachment", content.Record.DownloadName()))
	c.Header("Content-Length", strconv.Itoa(len(content.Data)))
	c.Data(http.StatusOK, content.Record.Type.ContentType(), content.Data)
}

func (h *httpHandler) deleteFile(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), fileID); err != nil {
		apperr.Respond(c, err, "failed to delete file")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *httpHandler) clearAll(c *gin.Context) {
	if err := h.service.ClearAll(c.Request.Context()); err != nil {
		apperr.Respond(c, err, "failed to clear files")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *httpHandler) renameFile(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.service.Rename(c.Request.Context(), fileID, req.Name); err != nil {
		apperr.Respond(c, err, "failed to rename file")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *httpHandler) moveFile(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.service.Move(c.Request.Context(), fileID, req.FolderID); err != nil {
		apperr.Respond(c, err, "failed to move file")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *httpHandler) checkConsistency(c *gin.Context) {
	report, err := h.service.CheckConsistency(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err, "failed to check consistency")
		return
	}

	c.JSON(http.StatusOK, gin.H{"consistent": report.Consistent(), "report": report})
}

func fileIDParam(c *gin.Context) (uuid.UUID, bool) {
	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		badRequest(c, "invalid file id")
		return uuid.Nil, false
	}
	return fileID, true
}

func optionalUUID(c *gin.Context, raw, msg string) (*uuid.UUID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, msg)
		return nil, false
	}
	return &id, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": apperr.KindInvalidArgument})
}

// contentDisposition carries an ASCII fallback for old clients and the exact
// UTF-8 name as an RFC 5987 extended parameter.
func contentDisposition(disposition, name string) string {
	return fmt.Sprintf(`%s; filename="%s"; filename*=UTF-8''%s`,
		disposition, asciiFallback(name), encodeExtValue(name))
}

// encodeExtValue percent-encodes every byte outside RFC 5987 attr-char.
func encodeExtValue(name string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if isAttrChar(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[ch>>4])
		b.WriteByte(hex[ch&0x0f])
	}
	return b.String()
}

func isAttrChar(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", ch) >= 0
}

func asciiFallback(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('_')
		case r < 0x20 || r > 0x7e:
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

package folder

import (
	"net/http"

	"github.com/abduss/docshelf/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterRoutes mounts folder endpoints onto the router.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/folders", handler.createFolder)
	group.GET("/folders", handler.listFolders)
	group.PATCH("/folders/:folderID", handler.renameFolder)
	group.DELETE("/folders/:folderID", handler.deleteFolder)
}

type httpHandler struct {
	service *Service
}

type folderNameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *httpHandler) createFolder(c *gin.Context) {
	var req folderNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apperr.KindInvalidArgument})
		return
	}

	folder, err := h.service.CreateFolder(c.Request.Context(), req.Name)
	if err != nil {
		apperr.Respond(c, err, "failed to create folder")
		return
	}

	c.JSON(http.StatusCreated, folder)
}

func (h *httpHandler) listFolders(c *gin.Context) {
	folders, err := h.service.ListFolders(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err, "failed to list folders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

func (h *httpHandler) renameFolder(c *gin.Context) {
	folderID, err := uuid.Parse(c.Param("folderID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder id", "code": apperr.KindInvalidArgument})
		return
	}

	var req folderNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apperr.KindInvalidArgument})
		return
	}

	if err := h.service.RenameFolder(c.Request.Context(), folderID, req.Name); err != nil {
		apperr.Respond(c, err, "failed to rename folder")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *httpHandler) deleteFolder(c *gin.Context) {
	folderID, err := uuid.Parse(c.Param("folderID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder id", "code": apperr.KindInvalidArgument})
		return
	}

	if err := h.service.DeleteFolder(c.Request.Context(), folderID); err != nil {
		apperr.Respond(c, err, "failed to delete folder")
		return
	}

	c.Status(http.StatusNoContent)
}

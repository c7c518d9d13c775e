package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/newsflowai/newsflow/internal/store"
)

func (s *Server) handleListKeywords(c *gin.Context) {
	keywords, err := s.storage.ListKeywords(c.Request.Context())
	if err != nil {
		s.log.Error("failed to list keywords", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"keywords": keywords})
}

type createKeywordRequest struct {
	Keyword   string `json:"keyword" binding:"required"`
	HoursBack int    `json:"hours_back"`
	Active    *bool  `json:"is_active"`
}

func (s *Server) handleCreateKeyword(c *gin.Context) {
	var req createKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	keyword, err := s.storage.CreateKeyword(
		c.Request.Context(), req.Keyword, req.HoursBack, boolOrDefault(req.Active, true))
	if err != nil {
		s.log.Error("failed to create keyword", "keyword", req.Keyword, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not register keyword"})
		return
	}

	c.JSON(http.StatusCreated, keyword)
}

func (s *Server) handleDeleteKeyword(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid keyword id"})
		return
	}

	if err := s.storage.DeleteKeyword(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "keyword not found"})
			return
		}
		s.log.Error("failed to delete keyword", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	c.Status(http.StatusNoContent)
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"postforge/api/dto"
	"postforge/auth"
	"postforge/errs"
	"postforge/orchestrator"
	"postforge/services"
)

// GenerateContentHandler accepts a ContentRequest and runs the pipeline.
func GenerateContentHandler(jwtMgr *auth.JWTManager, svc *services.ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c, jwtMgr)
		if !ok {
			return
		}

		var in dto.GenerateContentRequestDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, errs.Validation("invalid request body"))
			return
		}

		rec, err := svc.Generate(c.Request.Context(), userID, orchestrator.Request{
			ContentInput:   in.ContentInput,
			TargetLanguage: in.TargetLanguage,
			Formats:        in.Formats,
		})
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, dto.FromContentRecord(rec))
	}
}

// GetContentHandler returns a content record by contentId.
func GetContentHandler(jwtMgr *auth.JWTManager, svc *services.ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c, jwtMgr)
		if !ok {
			return
		}

		rec, err := svc.Get(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, dto.FromContentRecord(rec))
	}
}

// DeleteContentHandler deletes a content record and its stored objects.
func DeleteContentHandler(jwtMgr *auth.JWTManager, svc *services.ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c, jwtMgr)
		if !ok {
			return
		}

		if err := svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "content deleted"})
	}
}

// requireUserID verifies the Bearer token and returns the authenticated
// userId, writing the auth error envelope on failure.
func requireUserID(c *gin.Context, jwtMgr *auth.JWTManager) (string, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		writeError(c, errs.Auth("missing bearer token"))
		return "", false
	}

	userID, err := jwtMgr.Verify(token)
	if err != nil {
		writeError(c, errs.Auth("invalid or expired token"))
		return "", false
	}
	return userID, true
}

// writeError renders any pipeline error as the common error envelope.
func writeError(c *gin.Context, err error) {
	var e *errs.Error
	if !errors.As(err, &e) {
		e = errs.ServiceFailure("internal error", err)
	}
	c.JSON(errs.HTTPStatus(e.Kind), dto.ErrorResponseDTO{
		Error: dto.ErrorBodyDTO{
			Code:      string(e.Kind),
			Message:   e.Message,
			Details:   e.Details,
			Retryable: e.Retryable,
		},
	})
}

package handler

import (
	"github.com/calculation/backend/internal/interfaces/http/dto"
	"github.com/calculation/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// normalizer is implemented by queries that fill their defaults after binding
type normalizer interface {
	Normalize()
}

func normalize(v any) {
	if n, ok := v.(normalizer); ok {
		n.Normalize()
	}
}

// bindQuery binds the query string into T. On failure the 422 response is
// already written and ok is false.
func bindQuery[T any](c *gin.Context) (T, bool) {
	var query T
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return query, false
	}
	normalize(&query)
	return query, true
}

// bindJSON binds the request body into T
func bindJSON[T any](c *gin.Context) (T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return req, false
	}
	normalize(&req)
	return req, true
}

// bindURI binds the path parameters into T
func bindURI[T any](c *gin.Context) (T, bool) {
	var params T
	if err := c.ShouldBindUri(&params); err != nil {
		middleware.HandleValidationError(c, err)
		return params, false
	}
	return params, true
}

// pathID reads the :id path parameter
func pathID(c *gin.Context) (uuid.UUID, bool) {
	params, ok := bindURI[dto.IDRequest](c)
	if !ok {
		return uuid.Nil, false
	}
	// the uuid binding already checked the format
	return uuid.MustParse(params.ID), true
}

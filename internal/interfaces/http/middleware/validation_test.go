package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/calculation/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationRequest struct {
	Code   string          `json:"code" binding:"required,max=5"`
	Email  string          `json:"email" binding:"omitempty,email"`
	Color  string          `json:"color" binding:"omitempty,hexcolor"`
	Margin decimal.Decimal `json:"margin" binding:"gte=0"`
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req validationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	post := func(body string) (*httptest.ResponseRecorder, dto.Response) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		var resp dto.Response
		if w.Code != http.StatusOK {
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		}
		return w, resp
	}

	t.Run("reports the invalid fields by json name", func(t *testing.T) {
		w, resp := post(`{"code":"TOOLONG","email":"nope","color":"red","margin":"-1"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

		fields := make(map[string]string)
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "Must be at most 5 characters", fields["code"])
		assert.Equal(t, "Invalid email format", fields["email"])
		assert.Equal(t, "Must be a hexadecimal color", fields["color"])
		assert.Equal(t, "Must be greater than or equal to 0", fields["margin"])
	})

	t.Run("malformed json is a single detail", func(t *testing.T) {
		w, resp := post(`{"code":`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Empty(t, resp.Error.Details[0].Field)
	})

	t.Run("valid request passes", func(t *testing.T) {
		w, _ := post(`{"code":"ABC","color":"#ff0000","margin":"0.25"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

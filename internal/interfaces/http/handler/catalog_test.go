package handler_test

import (
	"net/http"
	"testing"

	calcapp "github.com/calculation/backend/internal/application/calculation"
	catalogapp "github.com/calculation/backend/internal/application/catalog"
	"github.com/calculation/backend/internal/application/margin"
	"github.com/calculation/backend/internal/application/partner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculationStateHandler(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, f.user)

	t.Run("creates, updates and deletes a state", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/calculation-states", token, map[string]any{
			"code": "draft", "description": "Draft", "editable": true, "color": "#AABBCC",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		state := decodeData[calcapp.StateResponse](t, w)
		assert.Equal(t, "DRAFT", state.Code)

		w = f.do(t, http.MethodPut, "/api/v1/calculation-states/"+state.ID.String(), token, map[string]any{
			"code": "DRAFT", "description": "Work in progress", "editable": true, "color": "#AABBCC",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Work in progress", decodeData[calcapp.StateResponse](t, w).Description)

		w = f.do(t, http.MethodDelete, "/api/v1/calculation-states/"+state.ID.String(), token, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("a duplicate code is a conflict", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/calculation-states", token, map[string]any{"code": "open"})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		assert.Equal(t, "ALREADY_EXISTS", errorCode(t, w))
	})

	t.Run("an invalid color is a validation error", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/calculation-states", token, map[string]any{
			"code": "X", "color": "green",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("a state in use cannot be deleted", func(t *testing.T) {
		f.createCalculation(t, token)
		w := f.do(t, http.MethodDelete, "/api/v1/calculation-states/"+f.editable.ID.String(), token, nil)
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		assert.Equal(t, "STATE_IN_USE", errorCode(t, w))
	})

	t.Run("lists the states sorted by code", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/calculation-states?sort=code&order=asc", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		states := decodeData[[]calcapp.StateResponse](t, w)
		require.Len(t, states, 2)
		assert.Equal(t, "CLOSED", states[0].Code)
		assert.Equal(t, "OPEN", states[1].Code)
	})

	t.Run("exports the states as a spreadsheet", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/calculation-states/export/xlsx", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
		assert.NotEmpty(t, w.Body.Bytes())
	})
}

func TestCatalogHandlers(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, f.user)

	t.Run("creates a group with margins", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/groups", token, map[string]any{
			"code": "supply", "description": "Supplies",
			"margins": []map[string]any{{"minimum": "0", "maximum": "1000", "margin": "1.2"}},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		group := decodeData[catalogapp.GroupResponse](t, w)
		assert.Equal(t, "SUPPLY", group.Code)
		assert.Len(t, group.Margins, 1)
	})

	t.Run("overlapping margins are refused", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/groups", token, map[string]any{
			"code": "overlap", "description": "Overlapping",
			"margins": []map[string]any{
				{"minimum": "0", "maximum": "100", "margin": "1.1"},
				{"minimum": "50", "maximum": "200", "margin": "1.2"},
			},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		assert.Equal(t, "MARGIN_OVERLAP", errorCode(t, w))
	})

	t.Run("a group with categories cannot be deleted", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, "/api/v1/groups/"+f.group.ID.String(), token, nil)
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("creates a category in a group", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/categories", token, map[string]any{
			"code": "floor", "description": "Flooring", "group_id": f.group.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		category := decodeData[catalogapp.CategoryResponse](t, w)
		assert.Equal(t, "WORK", category.GroupCode)
	})

	t.Run("creates and lists products", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/products", token, map[string]any{
			"description": "White paint", "unit": "l", "price": "12.50", "category_id": f.category.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		product := decodeData[catalogapp.ProductResponse](t, w)
		assert.Equal(t, "PAINT", product.CategoryCode)

		w = f.do(t, http.MethodGet, "/api/v1/products?search=white", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, decodeData[[]catalogapp.ProductResponse](t, w), 1)
	})

	t.Run("exports the products as csv", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/products/export/csv", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "White paint")
	})

	t.Run("creates a task and computes its price", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/tasks", token, map[string]any{
			"name": "Painting", "unit": "m2", "category_id": f.category.ID,
			"items": []map[string]any{{
				"name":    "Labour",
				"margins": []map[string]any{{"minimum": "0", "maximum": "100", "value": "15"}},
			}},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		id := idOf(t, w)

		w = f.do(t, http.MethodPost, "/api/v1/tasks/"+id.String()+"/compute", token, map[string]any{
			"quantity": "10",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})
}

func TestGlobalMarginHandler(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, f.user)

	w := f.do(t, http.MethodPut, "/api/v1/global-margins", token, map[string]any{
		"margins": []map[string]any{
			{"minimum": "0", "maximum": "1000", "margin": "1.1"},
			{"minimum": "1000", "maximum": "5000", "margin": "1.05"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/v1/global-margins", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	margins := decodeData[[]margin.GlobalMarginResponse](t, w)
	require.Len(t, margins, 2)
	assert.Equal(t, "0", margins[0].Minimum.String())

	w = f.do(t, http.MethodPost, "/api/v1/global-margins", token, map[string]any{
		"minimum": "500", "maximum": "2000", "margin": "1.2",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, "MARGIN_OVERLAP", errorCode(t, w))
}

func TestCustomerHandler(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, f.user)

	w := f.do(t, http.MethodPost, "/api/v1/customers", token, map[string]any{
		"company":   "Acme SA",
		"last_name": "Muster",
		"email":     "info@acme.test",
		"phone":     "044 668 18 00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customer := decodeData[partner.CustomerResponse](t, w)
	assert.Equal(t, "+41446681800", customer.Phone)

	w = f.do(t, http.MethodGet, "/api/v1/customers/"+customer.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/v1/customers", token, map[string]any{"email": "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

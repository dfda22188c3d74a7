package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"symposium/internal/catalog"
	"symposium/internal/delivery/http/helpers"
	"symposium/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]*domain.EventRecord{
		{ID: "e1", Name: "Code Sprint", Category: domain.CategoryTechnical, Price: 10000},
		{ID: "e2", Name: "Robotics Lab", Category: domain.CategoryWorkshop, Price: 25000},
		{ID: "e3", Name: "Paper Presentation", Category: domain.CategoryPaper, Price: 0},
	})
	require.NoError(t, err)
	return c
}

func TestCatalogController_ListEvents(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantStatus   int
		wantNames    []string
		wantBodyCode string
	}{
		{name: "all events in order", wantStatus: http.StatusOK, wantNames: []string{"Code Sprint", "Robotics Lab", "Paper Presentation"}},
		{name: "filtered by category", query: "?category=Workshop", wantStatus: http.StatusOK, wantNames: []string{"Robotics Lab"}},
		{name: "unknown category", query: "?category=sports", wantStatus: http.StatusBadRequest, wantBodyCode: helpers.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewCatalogController(testLogger, testCatalog(t))
			rr := httptest.NewRecorder()

			ctrl.ListEvents(rr, httptest.NewRequest(http.MethodGet, "http://test/events"+tt.query, nil))

			require.Equal(t, tt.wantStatus, rr.Code)
			var events []*domain.EventRecord
			envelope := decodeEnvelope(t, rr, &events)
			if tt.wantStatus != http.StatusOK {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
				return
			}
			var names []string
			for _, e := range events {
				names = append(names, e.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestCatalogController_GetEvent(t *testing.T) {
	ctrl := NewCatalogController(testLogger, testCatalog(t))

	t.Run("case insensitive lookup", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://test/events/code%20sprint", nil)
		req.SetPathValue("name", "code sprint")
		rr := httptest.NewRecorder()

		ctrl.GetEvent(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var event domain.EventRecord
		decodeEnvelope(t, rr, &event)
		assert.Equal(t, "Code Sprint", event.Name)
		assert.Equal(t, int64(10000), event.Price)
	})

	t.Run("unknown event", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://test/events/chess", nil)
		req.SetPathValue("name", "chess")
		rr := httptest.NewRecorder()

		ctrl.GetEvent(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
		envelope := decodeEnvelope(t, rr, nil)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, helpers.ErrCodeNotFound, envelope.Error.Code)
	})
}

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/wilayah_api/internal/cache"
	"github.com/GTDGit/wilayah_api/internal/models"
)

func decodeTerritory(t *testing.T, body []byte) (TerritoryResponse, json.RawMessage) {
	t.Helper()
	var resp TerritoryResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	var raw struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &raw))
	return resp, raw.Data
}

func TestTerritoryHandler_PublicReads(t *testing.T) {
	s := newServer(t)
	p := s.seedProvince(t, "32", "Jawa Barat")
	s.seedProvince(t, "11", "Aceh")
	r := s.seedRegency(t, p.ID, "3273", "Kota Bandung", "kota")

	w := s.do(t, http.MethodGet, "/v1/territory/province", models.Actor{}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp, data := decodeTerritory(t, w.Body.Bytes())
	assert.Equal(t, 2, resp.Meta.Total)
	var provinces []models.ProvinceResponse
	require.NoError(t, json.Unmarshal(data, &provinces))
	assert.Equal(t, []models.ProvinceResponse{
		{ID: provinces[0].ID, Code: "11", Name: "Aceh"},
		{ID: p.ID, Code: "32", Name: "Jawa Barat", RegencyCount: 1},
	}, provinces)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/v1/territory/province/%d/regency", p.ID), models.Actor{}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp, data = decodeTerritory(t, w.Body.Bytes())
	assert.Equal(t, "32", resp.Meta.ProvinceCode)
	assert.Equal(t, "Jawa Barat", resp.Meta.ProvinceName)
	var regencies []models.RegencyResponse
	require.NoError(t, json.Unmarshal(data, &regencies))
	require.Len(t, regencies, 1)
	assert.Equal(t, "3273", regencies[0].Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/v1/territory/regency/%d", r.ID), models.Actor{}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/v1/territory/province/999", models.Actor{}, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	resp, _ = decodeTerritory(t, w.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", resp.Error.Type)

	w = s.do(t, http.MethodGet, "/v1/territory/province/0", models.Actor{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTerritoryHandler_ReflectsAdminWrites(t *testing.T) {
	s := newServer(t)
	p := s.seedProvince(t, "32", "Jawa Barat")
	r := s.seedRegency(t, p.ID, "3273", "Kota Bandung", "kota")

	// Warm the cache through the public endpoints.
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, fmt.Sprintf("/v1/territory/province/%d", p.ID), models.Actor{}, nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, fmt.Sprintf("/v1/territory/regency/%d", r.ID), models.Actor{}, nil).Code)
	var cached models.Province
	require.True(t, s.store.Get(context.Background(), cache.ProvinceKey(p.ID), &cached))

	w := s.do(t, http.MethodPut, fmt.Sprintf("/v1/admin/provinces/%d", p.ID), adminActor, gin.H{"name": "Jawa Barat Baru"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/v1/territory/province/%d", p.ID), models.Actor{}, nil)
	_, data := decodeTerritory(t, w.Body.Bytes())
	var province models.ProvinceResponse
	require.NoError(t, json.Unmarshal(data, &province))
	assert.Equal(t, "Jawa Barat Baru", province.Name)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/v1/territory/regency/%d", r.ID), models.Actor{}, nil)
	_, data = decodeTerritory(t, w.Body.Bytes())
	var regency models.RegencyResponse
	require.NoError(t, json.Unmarshal(data, &regency))
	assert.Equal(t, "Jawa Barat Baru", regency.ProvinceName)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/v1/admin/provinces/%d/regencies", p.ID), adminActor,
		gin.H{"code": "3201", "name": "Kabupaten Bogor", "type": "kabupaten"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/v1/territory/province/%d", p.ID), models.Actor{}, nil)
	_, data = decodeTerritory(t, w.Body.Bytes())
	require.NoError(t, json.Unmarshal(data, &province))
	assert.Equal(t, 2, province.RegencyCount)
}

func TestTerritoryHandler_StorageFailure(t *testing.T) {
	s := newServer(t)
	s.territory.Fail = errBoom

	w := s.do(t, http.MethodGet, "/v1/territory/province", models.Actor{}, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp, _ := decodeTerritory(t, w.Body.Bytes())
	assert.Equal(t, "operation failed", resp.Message)
	assert.NotContains(t, w.Body.String(), "boom")
}

//go:build integration

package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/architeacher/markets/services/svc-markets/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/markets/services/svc-markets/testserver"
	"github.com/stretchr/testify/suite"
)

type MarketsAPIIntegrationTestSuite struct {
	suite.Suite
	server *testserver.TestServer
	client *http.Client
}

func TestMarketsAPIIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MarketsAPIIntegrationTestSuite))
}

func (s *MarketsAPIIntegrationTestSuite) SetupSuite() {
	server, err := testserver.New(context.Background())
	s.Require().NoError(err)

	s.server = server
	s.client = &http.Client{Timeout: 10 * time.Second}
}

func (s *MarketsAPIIntegrationTestSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
}

func (s *MarketsAPIIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.server.Reset(s.T().Context()))
}

func (s *MarketsAPIIntegrationTestSuite) do(method, path string, body any) *http.Response {
	var payload bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&payload).Encode(body))
	}

	req, err := http.NewRequestWithContext(s.T().Context(), method, s.server.URL()+path, &payload)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decode[T any](s *MarketsAPIIntegrationTestSuite, resp *http.Response) T {
	var out T
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))

	return out
}

func payload(registryCode, name string) map[string]any {
	return map[string]any{
		"legacyIdentifier": 1,
		"longitude":        -46550164,
		"latitude":         -23558733,
		"setCens":          355030885000091,
		"area":             3550308005040,
		"districtCode":     87,
		"district":         "VILA FORMOSA",
		"townCode":         26,
		"town":             "ARICANDUVA-FORMOSA-CARRAO",
		"firstZone":        "Leste",
		"secondZone":       "Leste 1",
		"name":             name,
		"registryCode":     registryCode,
		"publicArea":       "RUA MARAGOJIPE",
		"neighborhood":     "VL FORMOSA",
	}
}

func (s *MarketsAPIIntegrationTestSuite) TestLifecycle() {
	resp := s.do(http.MethodPost, "/v1/markets", payload("4041-0", "VILA FORMOSA"))
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	created := decode[handlers.MarketResponse](s, resp)

	again := s.do(http.MethodPost, "/v1/markets", payload("4041-0", "IGNORED"))
	s.Require().Equal(http.StatusCreated, again.StatusCode)
	s.Require().Equal(created.ID, decode[handlers.MarketResponse](s, again).ID)

	// populates the cache
	resp = s.do(http.MethodGet, "/v1/markets/"+created.ID, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Equal("VILA FORMOSA", decode[handlers.MarketResponse](s, resp).Name)

	resp = s.do(http.MethodPatch, "/v1/markets/4041-0", payload("", "FEIRA NOVA"))
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/v1/markets/"+created.ID, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Equal("FEIRA NOVA", decode[handlers.MarketResponse](s, resp).Name)

	resp = s.do(http.MethodDelete, "/v1/markets/4041-0", nil)
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodGet, "/v1/markets/"+created.ID, nil)
	s.Require().Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *MarketsAPIIntegrationTestSuite) TestSearch() {
	for _, market := range []struct{ code, name string }{
		{"4041-0", "VILA FORMOSA"},
		{"4045-2", "PRACA SANTA HELENA"},
		{"3048-1", "VILA FORMOSA"},
	} {
		s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/v1/markets", payload(market.code, market.name)).StatusCode)
	}

	resp := s.do(http.MethodGet, "/v1/markets?name=VILA%20FORMOSA&page=2&size=1&sort=registryCode,asc", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	page := decode[handlers.PageResponse](s, resp)
	s.Require().Equal(uint(2), page.TotalElements)
	s.Require().Equal(uint(2), page.TotalPages)
	s.Require().Equal(uint(1), page.NumberOfElements)
	s.Require().Equal("4041-0", page.Content[0].RegistryCode)
}

func (s *MarketsAPIIntegrationTestSuite) TestHealth() {
	resp := s.do(http.MethodGet, "/v1/health", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	s.server.Cache.SetError("cache unavailable")
	defer s.server.Cache.SetError("")

	// a failing cache degrades nothing
	resp = s.do(http.MethodGet, "/v1/health", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/jeturing/Segrd-forensics-sub000/logging"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sony/gobreaker"
)

// LookupService wraps the external reconnaissance APIs (Microsoft Graph,
// web-check). Every outbound call runs through a circuit breaker, and
// web-check results are cached since targets rarely change mid-investigation.
type LookupService struct {
	HTTPClient      *http.Client
	GraphBreaker    *gobreaker.CircuitBreaker
	WebCheckBreaker *gobreaker.CircuitBreaker
	webCheckCache   *lru.Cache[string, map[string]any]
}

func NewLookupService(httpClient *http.Client, graphBreaker, webCheckBreaker *gobreaker.CircuitBreaker) *LookupService {
	cache, _ := lru.New[string, map[string]any](256)
	return &LookupService{
		HTTPClient:      httpClient,
		GraphBreaker:    graphBreaker,
		WebCheckBreaker: webCheckBreaker,
		webCheckCache:   cache,
	}
}

// WebCheck queries the web-check API for a domain/host profile.
func (s *LookupService) WebCheck(target string) (map[string]any, error) {
	if target == "" {
		return nil, fmt.Errorf("target is required")
	}
	if cached, ok := s.webCheckCache.Get(target); ok {
		return cached, nil
	}

	baseURL := os.Getenv("WEBCHECK_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("WEBCHECK_API_URL not set")
	}

	result, err := s.WebCheckBreaker.Execute(func() (interface{}, error) {
		resp, err := s.HTTPClient.Get(fmt.Sprintf("%s/api/scan?url=%s", baseURL, url.QueryEscape(target)))
		if err != nil {
			return nil, fmt.Errorf("web-check request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("web-check error (%d): %s", resp.StatusCode, string(body))
		}

		var parsed map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, fmt.Errorf("failed to decode web-check response: %v", err)
		}
		return parsed, nil
	})
	if err != nil {
		return nil, err
	}

	parsed := result.(map[string]any)
	s.webCheckCache.Add(target, parsed)
	return parsed, nil
}

// GetSignIns pulls recent risky sign-ins from the Microsoft Graph API using
// an app access token supplied by the caller's tenant configuration.
func (s *LookupService) GetSignIns(accessToken string) ([]map[string]any, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("graph access token is required")
	}

	baseURL := os.Getenv("MSGRAPH_API_URL")
	if baseURL == "" {
		baseURL = "https://graph.microsoft.com/v1.0"
	}

	result, err := s.GraphBreaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequest(http.MethodGet, baseURL+"/auditLogs/signIns?$top=50", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)

		resp, err := s.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("graph request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("graph API error (%d): %s", resp.StatusCode, string(body))
		}

		var parsed struct {
			Value []map[string]any `json:"value"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, fmt.Errorf("failed to decode graph response: %v", err)
		}
		return parsed.Value, nil
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: MSGRAPH_LOOKUP_FAILED, Description: Sign-in lookup failed: %v", err)
		return nil, err
	}

	return result.([]map[string]any), nil
}

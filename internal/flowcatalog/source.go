package flowcatalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pasturelink/marketplace-backend/pkg/enums"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
)

// CategoryFlowOption is one selectable answer to a category's setup question.
type CategoryFlowOption struct {
	Key               string          `json:"key"`
	Label             string          `json:"label"`
	Description       string          `json:"description,omitempty"`
	StoreType         enums.StoreType `json:"store_type,omitempty"`
	CanProduce        bool            `json:"can_produce"`
	CanProcess        bool            `json:"can_process"`
	CanRetail         *bool           `json:"can_retail,omitempty"`
	NeedsPartnerships bool            `json:"needs_partnerships"`
	PartnerType       string          `json:"partner_type,omitempty"`
}

// CategoryFlowConfig is the per-category question plus its ordered options.
type CategoryFlowConfig struct {
	Question string               `json:"question"`
	Options  []CategoryFlowOption `json:"options"`
}

// Source fetches the full category flow configuration.
type Source interface {
	Fetch(ctx context.Context) (map[string]CategoryFlowConfig, error)
}

// HTTPSource pulls the category flow configuration from the catalog service.
type HTTPSource struct {
	httpClient *http.Client
	baseURL    string
}

// SourceOption configures optional source behavior.
type SourceOption func(*HTTPSource)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) SourceOption {
	return func(s *HTTPSource) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewHTTPSource builds the catalog source client.
func NewHTTPSource(baseURL string, timeout time.Duration, opts ...SourceOption) (*HTTPSource, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("flow catalog base url is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	source := &HTTPSource{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(source)
		}
	}
	return source, nil
}

// Fetch retrieves the category flow map from the catalog service.
func (s *HTTPSource) Fetch(ctx context.Context) (map[string]CategoryFlowConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/category-flows", nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch category flows")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("catalog service returned %d", resp.StatusCode))
	}

	var payload map[string]CategoryFlowConfig
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode category flows")
	}
	return payload, nil
}

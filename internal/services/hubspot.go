package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Changaizkhan/autopair-final/internal/models"
	"github.com/Changaizkhan/autopair-final/internal/storage"
	"github.com/Changaizkhan/autopair-final/internal/utils"
)

const hubspotContactsPath = "/crm/v3/objects/contacts"

// HubSpotClient is the LeadStore backed by HubSpot CRM contacts.
type HubSpotClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	retry      RetryPolicy
}

func NewHubSpotClient(baseURL, apiKey string, policy RetryPolicy, opts ...func(*HubSpotClient)) *HubSpotClient {
	c := &HubSpotClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		retry:      policy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithHTTPClient(httpClient *http.Client) func(*HubSpotClient) {
	return func(c *HubSpotClient) {
		if httpClient != nil {
			c.HTTPClient = httpClient
		}
	}
}

var _ storage.LeadStore = (*HubSpotClient)(nil)

type hubspotFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type hubspotFilterGroup struct {
	Filters []hubspotFilter `json:"filters"`
}

type hubspotSort struct {
	PropertyName string `json:"propertyName"`
	Direction    string `json:"direction"`
}

type hubspotSearchRequest struct {
	FilterGroups []hubspotFilterGroup `json:"filterGroups"`
	Sorts        []hubspotSort        `json:"sorts,omitempty"`
	Properties   []string             `json:"properties"`
	Limit        int                  `json:"limit"`
}

type hubspotContact struct {
	ID         string             `json:"id"`
	Properties map[string]*string `json:"properties"`
	CreatedAt  time.Time          `json:"createdAt"`
}

type hubspotSearchResponse struct {
	Results []hubspotContact `json:"results"`
}

// hubspotStatusError is a non-2xx answer from the HubSpot API.
type hubspotStatusError struct {
	StatusCode int
	Body       string
}

func (e *hubspotStatusError) Error() string {
	return fmt.Sprintf("hubspot non-2xx: %d: %s", e.StatusCode, e.Body)
}

func isHubSpotNotFound(err error) bool {
	var statusErr *hubspotStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// SearchLeads runs a contact search filtered by lifecycle stage.
func (c *HubSpotClient) SearchLeads(ctx context.Context, search models.LeadSearch) ([]*models.Lead, error) {
	req := hubspotSearchRequest{
		Properties: search.Properties,
		Limit:      search.Limit,
	}
	if search.LifecycleStage != "" {
		req.FilterGroups = []hubspotFilterGroup{{Filters: []hubspotFilter{{
			PropertyName: models.PropLifecycleStage,
			Operator:     "EQ",
			Value:        search.LifecycleStage,
		}}}}
	}
	if search.SortProperty != "" {
		direction := "ASCENDING"
		if search.Descending {
			direction = "DESCENDING"
		}
		req.Sorts = []hubspotSort{{PropertyName: search.SortProperty, Direction: direction}}
	}
	return c.search(ctx, req)
}

// GetLead reads one contact with the detail property set.
func (c *HubSpotClient) GetLead(ctx context.Context, leadID string) (*models.Lead, error) {
	query := url.Values{}
	query.Set("properties", strings.Join(models.DetailProperties, ","))
	endpoint := fmt.Sprintf("%s%s/%s?%s", c.BaseURL, hubspotContactsPath, url.PathEscape(leadID), query.Encode())

	var contact hubspotContact
	err := c.retry.Do(ctx, "hubspot fetch", func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodGet, endpoint, nil, &contact)
	})
	if err != nil {
		if isHubSpotNotFound(err) {
			return nil, storage.ErrLeadNotFound
		}
		log.Warnf("⚠️  HubSpot fetch failed for lead %s: %v", leadID, err)
		return nil, fmt.Errorf("fetch lead %s: %w", leadID, err)
	}
	return contact.toLead(), nil
}

// UpdateLead patches contact properties. It returns false, nil when the contact is gone.
func (c *HubSpotClient) UpdateLead(ctx context.Context, leadID string, properties map[string]string) (bool, error) {
	log.Infof("🔄 Updating HubSpot (lead_id: %s): %v", leadID, properties)
	endpoint := fmt.Sprintf("%s%s/%s", c.BaseURL, hubspotContactsPath, url.PathEscape(leadID))
	payload := map[string]any{"properties": properties}

	err := c.retry.Do(ctx, "hubspot update", func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPatch, endpoint, payload, nil)
	})
	if err != nil {
		if isHubSpotNotFound(err) {
			log.Warnf("⚠️  Lead %s not found (404). Skipping update.", leadID)
			return false, nil
		}
		log.Errorf("❌ HubSpot update failed for lead %s: %v", leadID, err)
		return false, fmt.Errorf("update lead %s: %w", leadID, err)
	}

	log.Infof("✅ HubSpot update successful for lead %s", leadID)
	return true, nil
}

// FindLeadByPhone tries each spelling of phone the CRM may hold and returns the
// first match. It fails only when no search succeeded.
func (c *HubSpotClient) FindLeadByPhone(ctx context.Context, phone string) (*models.Lead, error) {
	var lastErr error
	searched := false
	for _, pattern := range utils.PhoneSearchPatterns(phone) {
		leads, err := c.search(ctx, hubspotSearchRequest{
			FilterGroups: []hubspotFilterGroup{{Filters: []hubspotFilter{{
				PropertyName: models.PropPhone,
				Operator:     "CONTAINS_TOKEN",
				Value:        pattern,
			}}}},
			Properties: models.DetailProperties,
			Limit:      1,
		})
		if err != nil {
			log.Errorf("❌ HubSpot search failed for %s: %v", pattern, err)
			lastErr = err
			continue
		}
		searched = true
		if len(leads) > 0 {
			return leads[0], nil
		}
	}
	if !searched && lastErr != nil {
		return nil, fmt.Errorf("find lead by phone %s: %w", phone, lastErr)
	}
	return nil, nil
}

func (c *HubSpotClient) search(ctx context.Context, req hubspotSearchRequest) ([]*models.Lead, error) {
	if req.FilterGroups == nil {
		req.FilterGroups = []hubspotFilterGroup{}
	}
	endpoint := c.BaseURL + hubspotContactsPath + "/search"

	var resp hubspotSearchResponse
	err := c.retry.Do(ctx, "hubspot search", func(ctx context.Context) error {
		resp = hubspotSearchResponse{}
		return c.doJSON(ctx, http.MethodPost, endpoint, req, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}

	leads := make([]*models.Lead, 0, len(resp.Results))
	for i := range resp.Results {
		leads = append(leads, resp.Results[i].toLead())
	}
	return leads, nil
}

// doJSON sends payload as JSON and decodes a 2xx body into out. Retryable
// failures are marked transient.
func (c *HubSpotClient) doJSON(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if isConnectionError(err) {
			return transient(err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		statusErr := &hubspotStatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
		if isTransientStatus(resp.StatusCode) {
			return transient(statusErr)
		}
		return statusErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (h hubspotContact) toLead() *models.Lead {
	lead := &models.Lead{
		ID:         h.ID,
		CreatedAt:  h.CreatedAt,
		Properties: make(map[string]string, len(h.Properties)),
	}
	for k, v := range h.Properties {
		if v != nil {
			lead.Properties[k] = *v
		}
	}
	if created, err := time.Parse(time.RFC3339, lead.Prop(models.PropCreateDate)); err == nil {
		lead.CreatedAt = created
	}
	return lead
}

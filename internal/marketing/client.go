// Package marketing adapts the marketing-automation contact API. Contacts
// are upserted (find-by-email, then create-or-patch) and tagged after the
// fact; the whole surface sits behind HTTP Basic auth.
package marketing

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vistamar/listings-api/internal/logger"
	"github.com/vistamar/listings-api/internal/models"
	"github.com/vistamar/listings-api/internal/providers"
)

// ProviderName identifies the marketing-automation system in logs and
// health messages.
const ProviderName = "marketing"

// Config holds the connection settings for the contact API.
type Config struct {
	BaseURL     string
	Username    string
	Password    string
	Timeout     time.Duration
	MaxAttempts int
}

// Client is a stateless adapter for the contact API. Safe for concurrent
// reuse.
type Client struct {
	cfg  Config
	doer *providers.HTTPDoer
	log  *logger.Logger
}

// New builds a Client from configuration.
func New(cfg Config, log *logger.Logger) *Client {
	return &Client{
		cfg:  cfg,
		doer: providers.NewHTTPDoer(ProviderName, cfg.Timeout, cfg.MaxAttempts),
		log:  log,
	}
}

// Name identifies the client in aggregate health output.
func (c *Client) Name() string {
	return ProviderName
}

// ContactResult reports the outcome of a contact upsert.
type ContactResult struct {
	ContactID  string
	WasUpdated bool
}

type contactPayload struct {
	ID int64 `json:"id"`
}

type contactEnvelope struct {
	Contact contactPayload `json:"contact"`
}

type searchEnvelope struct {
	Total    int              `json:"total"`
	Contacts []contactPayload `json:"contacts"`
}

// UpsertContact finds a contact by email and patches it, or creates a new
// one. A transport failure during the search step is treated as "not
// found": the flow fails open toward creating a contact rather than
// losing the lead.
func (c *Client) UpsertContact(ctx context.Context, lead models.EnrichedLead) (*ContactResult, error) {
	fields := contactFields(lead)

	if lead.Email != "" {
		existing, err := c.findByEmail(ctx, lead.Email)
		if err != nil {
			c.log.Warn("Contact search failed, falling back to create", map[string]interface{}{
				"error": err.Error(),
			})
		} else if existing != "" {
			if err := c.editContact(ctx, existing, fields); err != nil {
				return nil, err
			}
			return &ContactResult{ContactID: existing, WasUpdated: true}, nil
		}
	}

	id, err := c.createContact(ctx, fields)
	if err != nil {
		return nil, err
	}
	return &ContactResult{ContactID: id}, nil
}

// CreateLead adapts a lead into a contact upsert and reports it in the
// common LeadResult shape.
func (c *Client) CreateLead(ctx context.Context, lead models.EnrichedLead) (*models.LeadResult, error) {
	res, err := c.UpsertContact(ctx, lead)
	if err != nil {
		return nil, err
	}
	msg := "contact created"
	if res.WasUpdated {
		msg = "contact updated"
	}
	return &models.LeadResult{
		Success: true,
		LeadID:  res.ContactID,
		Message: msg,
	}, nil
}

// AddTags applies tags to a contact.
func (c *Client) AddTags(ctx context.Context, contactID string, tags []string) error {
	return c.tagOp(ctx, "add_tags", contactID, "add", tags)
}

// RemoveTags removes tags from a contact.
func (c *Client) RemoveTags(ctx context.Context, contactID string, tags []string) error {
	return c.tagOp(ctx, "remove_tags", contactID, "remove", tags)
}

// HealthCheck probes the contact API with an empty search.
func (c *Client) HealthCheck(ctx context.Context) providers.HealthStatus {
	params := url.Values{}
	params.Set("limit", "1")
	var resp searchEnvelope
	_, err := c.doer.DoJSON(ctx, "health_check", func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, "/contacts?"+params.Encode(), nil)
	}, &resp)
	if err != nil {
		return providers.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return providers.HealthStatus{Healthy: true}
}

// findByEmail returns the id of the contact matching the email, or "" when
// no contact matches.
func (c *Client) findByEmail(ctx context.Context, email string) (string, error) {
	params := url.Values{}
	params.Set("search", "email:"+email)
	params.Set("limit", "1")

	var resp searchEnvelope
	_, err := c.doer.DoJSON(ctx, "find_contact", func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, "/contacts?"+params.Encode(), nil)
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Contacts) == 0 {
		return "", nil
	}
	return strconv.FormatInt(resp.Contacts[0].ID, 10), nil
}

func (c *Client) createContact(ctx context.Context, fields map[string]interface{}) (string, error) {
	var resp contactEnvelope
	_, err := c.doer.DoJSON(ctx, "create_contact", func(ctx context.Context) (*http.Request, error) {
		body, err := providers.JSONBody(fields)
		if err != nil {
			return nil, err
		}
		return c.newRequest(ctx, http.MethodPost, "/contacts/new", body)
	}, &resp)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(resp.Contact.ID, 10), nil
}

func (c *Client) editContact(ctx context.Context, id string, fields map[string]interface{}) error {
	_, err := c.doer.DoJSON(ctx, "edit_contact", func(ctx context.Context) (*http.Request, error) {
		body, err := providers.JSONBody(fields)
		if err != nil {
			return nil, err
		}
		return c.newRequest(ctx, http.MethodPatch, "/contacts/"+url.PathEscape(id)+"/edit", body)
	}, nil)
	return err
}

func (c *Client) tagOp(ctx context.Context, op, contactID, action string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	payload := map[string]interface{}{"tags": tags}
	_, err := c.doer.DoJSON(ctx, op, func(ctx context.Context) (*http.Request, error) {
		body, err := providers.JSONBody(payload)
		if err != nil {
			return nil, err
		}
		return c.newRequest(ctx, http.MethodPost, "/contacts/"+url.PathEscape(contactID)+"/tags/"+action, body)
	}, nil)
	return err
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// contactFields flattens an enriched lead into the contact API's field
// map.
func contactFields(lead models.EnrichedLead) map[string]interface{} {
	fields := map[string]interface{}{
		"firstname": lead.Name,
		"phone":     lead.Phone,
	}
	if lead.Email != "" {
		fields["email"] = lead.Email
	}
	if lead.Message != "" {
		fields["last_message"] = lead.Message
	}
	if lead.Source != "" {
		fields["lead_source"] = lead.Source
	}
	if lead.Intent != "" {
		fields["intent"] = lead.Intent
	}
	if lead.UTM.Source != "" {
		fields["utm_source"] = lead.UTM.Source
	}
	if lead.UTM.Medium != "" {
		fields["utm_medium"] = lead.UTM.Medium
	}
	if lead.UTM.Campaign != "" {
		fields["utm_campaign"] = lead.UTM.Campaign
	}
	if lead.Device != "" {
		fields["device"] = lead.Device
	}
	if lead.Property != nil {
		fields["property_code"] = lead.Property.Code
		fields["property_city"] = lead.Property.City
		if lead.Property.SalePrice != nil {
			fields["property_price"] = *lead.Property.SalePrice
		}
	} else if lead.PropertyCode != "" {
		fields["property_code"] = lead.PropertyCode
	}
	return fields
}

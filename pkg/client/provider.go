package client

import (
	"context"
	"fmt"
	"net/url"
	"slotbook/pkg/model"
)

const providersPath = "/api/v1/providers"

type ProviderClient struct {
	httpClient *HttpClient
}

func NewProviderClient(baseUrl string) *ProviderClient {
	return &ProviderClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// As returns a client acting on behalf of actor.
func (c *ProviderClient) As(actor model.Actor) *ProviderClient {
	return &ProviderClient{httpClient: c.httpClient.As(actor)}
}

func (c *ProviderClient) Create(ctx context.Context, p *model.Provider) (*model.Provider, error) {
	resp, err := c.httpClient.POST(ctx, providersPath, p)
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Provider](resp)
}

func (c *ProviderClient) GetByID(ctx context.Context, id string) (*model.Provider, error) {
	resp, err := c.httpClient.GET(ctx, providerPath(id))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Provider](resp)
}

func (c *ProviderClient) List(ctx context.Context, category model.Category, limit int, offset int64) ([]*model.Provider, *Metadata, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", string(category))
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	resp, err := c.httpClient.GET(ctx, providersPath+"?"+q.Encode())
	if err != nil {
		return nil, nil, err
	}
	return decodePage[*model.Provider](resp)
}

func (c *ProviderClient) SetWorkingHours(ctx context.Context, id string, hours []model.DayHours) (*model.Provider, error) {
	resp, err := c.httpClient.PUT(ctx, providerPath(id)+"/working-hours", model.WorkingHoursRequest{WorkingHours: hours})
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Provider](resp)
}

func (c *ProviderClient) UpsertException(ctx context.Context, id string, req model.ExceptionRequest) (*model.Provider, error) {
	resp, err := c.httpClient.PUT(ctx, providerPath(id)+"/exceptions", req)
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Provider](resp)
}

func (c *ProviderClient) AddService(ctx context.Context, id string, req model.ServiceRequest) (*model.Service, error) {
	resp, err := c.httpClient.POST(ctx, providerPath(id)+"/services", req)
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Service](resp)
}

func (c *ProviderClient) Slots(ctx context.Context, id, serviceID, date string) (*model.Slots, error) {
	q := url.Values{}
	q.Set("service_id", serviceID)
	q.Set("date", date)

	resp, err := c.httpClient.GET(ctx, providerPath(id)+"/slots?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Slots](resp)
}

func providerPath(id string) string {
	return providersPath + "/id/" + url.PathEscape(id)
}

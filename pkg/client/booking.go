package client

import (
	"context"
	"fmt"
	"net/url"
	"slotbook/pkg/model"
	"time"
)

const bookingsPath = "/api/v1/bookings"

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// As returns a client acting on behalf of actor.
func (c *BookingClient) As(actor model.Actor) *BookingClient {
	return &BookingClient{httpClient: c.httpClient.As(actor)}
}

func (c *BookingClient) Create(ctx context.Context, req model.CreateBookingRequest) (*model.Booking, error) {
	resp, err := c.httpClient.POST(ctx, bookingsPath, req)
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Booking](resp)
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, bookingPath(id))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Booking](resp)
}

func (c *BookingClient) List(ctx context.Context, from, to time.Time, limit int, offset int64) ([]*model.Booking, *Metadata, error) {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("from", from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		q.Set("to", to.Format(time.RFC3339))
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	resp, err := c.httpClient.GET(ctx, bookingsPath+"?"+q.Encode())
	if err != nil {
		return nil, nil, err
	}
	return decodePage[*model.Booking](resp)
}

func (c *BookingClient) ChangeStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	resp, err := c.httpClient.PATCH(ctx, bookingPath(id)+"/status", model.StatusChangeRequest{Status: status})
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Booking](resp)
}

func (c *BookingClient) Review(ctx context.Context, id string, rating int, comment string) (*model.Booking, error) {
	resp, err := c.httpClient.POST(ctx, bookingPath(id)+"/review", model.ReviewRequest{Rating: rating, Comment: comment})
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Booking](resp)
}

func bookingPath(id string) string {
	return bookingsPath + "/id/" + url.PathEscape(id)
}

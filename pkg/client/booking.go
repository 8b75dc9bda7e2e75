package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"slotly/pkg/model"
)

const bookingsPath = "/api/v1/bookings"

// BookingClient calls the bookings HTTP API. Token, when set, is sent as the
// bearer credential for the host-only operations.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *BookingClient) WithToken(token string) *BookingClient {
	c.httpClient.Token = token
	return c
}

func (c *BookingClient) Book(ctx context.Context, req model.BookingRequest) (*Response, error) {
	return c.httpClient.POST(ctx, bookingsPath, req)
}

// BookWithKey sends the booking with an Idempotency-Key so a retried request
// replays the first response instead of booking twice.
func (c *BookingClient) BookWithKey(ctx context.Context, req model.BookingRequest, key string) (*Response, error) {
	return c.httpClient.POSTWithHeaders(ctx, bookingsPath, req, map[string]string{"Idempotency-Key": key})
}

func (c *BookingClient) CheckAvailability(ctx context.Context, guestEmail, hostEmail, date, slot string) (*Response, error) {
	q := url.Values{}
	q.Set("guest_email", guestEmail)
	q.Set("host_email", hostEmail)
	q.Set("date", date)
	q.Set("slot", slot)
	return c.httpClient.GET(ctx, bookingsPath+"/availability?"+q.Encode())
}

func (c *BookingClient) Update(ctx context.Context, id string, update model.BookingUpdate) (*Response, error) {
	return c.httpClient.PUT(ctx, bookingsPath+"/id/"+url.PathEscape(id), update)
}

func (c *BookingClient) Delete(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.DELETE(ctx, bookingsPath+"/id/"+url.PathEscape(id))
}

func (c *BookingClient) Hosted(ctx context.Context, hostEmail string) (*Response, error) {
	return c.httpClient.GET(ctx, bookingsPath+"/hosted/"+url.PathEscape(hostEmail))
}

func (c *BookingClient) Guest(ctx context.Context, guestEmail string) (*Response, error) {
	return c.httpClient.GET(ctx, bookingsPath+"/guest/"+url.PathEscape(guestEmail))
}

func (c *BookingClient) All(ctx context.Context, userEmail string, partition model.Partition) (*Response, error) {
	path := bookingsPath + "/all/" + url.PathEscape(userEmail)
	if partition != "" {
		path += "?partition=" + url.QueryEscape(string(partition))
	}
	return c.httpClient.GET(ctx, path)
}

func (c *BookingClient) Slots(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, bookingsPath+"/slots")
}

func decodeData(resp *Response, target any) error {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return fmt.Errorf("could not decode response wrapper (status %d): %w", resp.StatusCode, err)
	}
	if err := json.Unmarshal(wrapper.Data, target); err != nil {
		return fmt.Errorf("could not decode response data (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var booking model.Booking
	if err := decodeData(resp, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) DecodeBookings(resp *Response) ([]*model.Booking, error) {
	var bookings []*model.Booking
	if err := decodeData(resp, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *BookingClient) DecodePartitioned(resp *Response) (*model.PartitionedBookings, error) {
	var partitioned model.PartitionedBookings
	if err := decodeData(resp, &partitioned); err != nil {
		return nil, err
	}
	return &partitioned, nil
}

func (c *BookingClient) DecodeDailySlots(resp *Response) (*model.DailySlots, error) {
	var slots model.DailySlots
	if err := decodeData(resp, &slots); err != nil {
		return nil, err
	}
	return &slots, nil
}

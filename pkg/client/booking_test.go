package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"slotly/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method string
	uri    string
	auth   string
	key    string
	body   map[string]any
}

func newTestServer(t *testing.T, status int, reply string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.uri = r.URL.RequestURI()
		captured.auth = r.Header.Get("Authorization")
		captured.key = r.Header.Get("Idempotency-Key")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&captured.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func TestBookingClient_BookWithKey(t *testing.T) {
	server, captured := newTestServer(t, http.StatusCreated,
		`{"message":"ok","data":{"id":"abc","guest_email":"g@x.com","host_email":"h@x.com","date":"2024-06-01","slot":"10:00"}}`)
	c := NewBookingClient(server.URL)

	resp, err := c.BookWithKey(context.Background(), model.BookingRequest{
		GuestEmail: "g@x.com",
		HostEmail:  "h@x.com",
		Date:       "2024-06-01",
		Slot:       "10:00",
	}, "retry-1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "/api/v1/bookings", captured.uri)
	assert.Equal(t, "retry-1", captured.key)
	assert.Equal(t, "g@x.com", captured.body["guest_email"])

	booking, err := c.DecodeBooking(resp)
	require.NoError(t, err)
	assert.Equal(t, "abc", booking.ID)
	assert.Equal(t, "10:00", booking.Slot)
}

func TestBookingClient_PathsAndToken(t *testing.T) {
	server, captured := newTestServer(t, http.StatusOK, `{"data":[]}`)
	c := NewBookingClient(server.URL).WithToken("tok")
	ctx := context.Background()

	_, err := c.All(ctx, "a b@x.com", model.PartitionByTime)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/bookings/all/a%20b@x.com?partition=time", captured.uri)
	assert.Equal(t, "Bearer tok", captured.auth)

	_, err = c.CheckAvailability(ctx, "g@x.com", "h@x.com", "2024-06-01", "10:00")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/bookings/availability?date=2024-06-01&guest_email=g%40x.com&host_email=h%40x.com&slot=10%3A00", captured.uri)

	resp, err := c.Delete(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, captured.method)
	assert.Equal(t, "/api/v1/bookings/id/abc", captured.uri)

	bookings, err := c.DecodeBookings(resp)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestGetErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message wins", `{"code":"CONFLICT","message":"Slot already booked"}`, "Slot already booked"},
		{"falls back to code", `{"code":"UNAUTHORIZED"}`, "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorMessage(&Response{Body: []byte(tt.body)}))
		})
	}

	assert.Contains(t, GetErrorMessage(&Response{Body: []byte("<html>")}), "failed to unmarshal error")
}

func TestDecodeData_BadBody(t *testing.T) {
	resp := &Response{Response: &http.Response{StatusCode: http.StatusBadGateway}, Body: []byte("gateway down")}

	_, err := NewBookingClient("http://unused").DecodeDailySlots(resp)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

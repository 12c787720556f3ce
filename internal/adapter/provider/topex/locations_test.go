package topex

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
)

func TestDecodeLocations(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []domain.Location
		wantErr bool
	}{
		{
			name: "map keeps provider order",
			raw:  `{"77":"Москва","78":"Санкт-Петербург","16":"Казань"}`,
			want: []domain.Location{
				{ID: "77", Name: "Москва"},
				{ID: "78", Name: "Санкт-Петербург"},
				{ID: "16", Name: "Казань"},
			},
		},
		{
			name: "map of records",
			raw:  `{"77":{"name":"Москва"},"16":{"cityName":"Казань"}}`,
			want: []domain.Location{
				{ID: "77", Name: "Москва"},
				{ID: "16", Name: "Казань"},
			},
		},
		{
			name: "list with numeric ids",
			raw:  `[{"id":77,"name":"Москва"},{"cityId":"16","cityName":"Казань"},{"code":"66","title":"Екатеринбург"}]`,
			want: []domain.Location{
				{ID: "77", Name: "Москва"},
				{ID: "16", Name: "Казань"},
				{ID: "66", Name: "Екатеринбург"},
			},
		},
		{
			name: "incomplete records are skipped",
			raw:  `[{"id":"1"},{"name":"Nowhere"},{"id":"2","name":"Омск"}]`,
			want: []domain.Location{{ID: "2", Name: "Омск"}},
		},
		{
			name: "empty list",
			raw:  `[]`,
			want: []domain.Location{},
		},
		{
			name: "null",
			raw:  `null`,
			want: []domain.Location{},
		},
		{
			name:    "unexpected scalar",
			raw:     `"cities"`,
			wantErr: true,
		},
		{
			name:    "bad map value",
			raw:     `{"1":true}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeLocations(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirectory_SearchLocations(t *testing.T) {
	fake, srv := newFakeTopex(t)
	fake.setCities(jsonHandler(http.StatusOK, map[string]any{
		"status": true,
		"data":   []map[string]any{{"id": "77", "name": "Москва"}},
	}))

	client := newTestClient(srv.URL)
	dir := NewDirectory(client, NewSession(client, Credentials{Email: "a@b.c", Password: "p"}, 0), zerolog.Nop())

	got, err := dir.SearchLocations(context.Background(), "моск", 2, 50)

	require.NoError(t, err)
	assert.Equal(t, []domain.Location{{ID: "77", Name: "Москва"}}, got)

	params := fake.citiesParams()
	assert.Equal(t, testToken, params["authToken"])
	assert.Equal(t, "моск", params["search"])
	assert.Equal(t, "2", params["page"])
	assert.Equal(t, "50", params["pageSize"])
}

func TestDirectory_SearchLocations_CitiesKey(t *testing.T) {
	fake, srv := newFakeTopex(t)
	fake.setCities(jsonHandler(http.StatusOK, map[string]any{
		"status": true,
		"cities": map[string]string{"16": "Казань"},
	}))

	client := newTestClient(srv.URL)
	dir := NewDirectory(client, NewSession(client, Credentials{Email: "a@b.c", Password: "p"}, 0), zerolog.Nop())

	got, err := dir.SearchLocations(context.Background(), "", 0, 0)

	require.NoError(t, err)
	assert.Equal(t, []domain.Location{{ID: "16", Name: "Казань"}}, got)
	_, hasSearch := fake.citiesParams()["search"]
	assert.False(t, hasSearch)
}

func TestDirectory_SearchLocations_Errors(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantErr     error
		wantInvalid bool
	}{
		{
			name:    "provider rejects",
			handler: jsonHandler(http.StatusOK, map[string]any{"status": false, "error": "search too short"}),
			wantErr: domain.ErrProviderRejected,
		},
		{
			name:        "unauthorized invalidates session",
			handler:     jsonHandler(http.StatusUnauthorized, map[string]any{"status": false}),
			wantErr:     domain.ErrTransport,
			wantInvalid: true,
		},
		{
			name:    "server error",
			handler: jsonHandler(http.StatusInternalServerError, map[string]any{}),
			wantErr: domain.ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, srv := newFakeTopex(t)
			fake.setCities(tt.handler)
			client := newTestClient(srv.URL)
			session := NewSession(client, Credentials{Email: "a@b.c", Password: "p"}, 0)
			dir := NewDirectory(client, session, zerolog.Nop())

			_, err := dir.SearchLocations(context.Background(), "x", 1, 10)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantInvalid, !session.IsAuthenticated())
		})
	}
}

func TestDirectory_SearchLocations_AuthFailure(t *testing.T) {
	fake, srv := newFakeTopex(t)
	fake.setAuth(http.StatusOK, map[string]any{"status": false, "error": "locked"})
	client := newTestClient(srv.URL)
	dir := NewDirectory(client, NewSession(client, Credentials{Email: "a@b.c", Password: "p"}, 0), zerolog.Nop())

	_, err := dir.SearchLocations(context.Background(), "x", 1, 10)

	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
	assert.Zero(t, fake.citiesCalls.Load())
}

package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func reply(body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body)), Header: header}
}

func testStore(t *testing.T, rt roundTripFunc) *Store {
	t.Helper()
	svc, err := gsheets.NewService(context.Background(),
		option.WithHTTPClient(&http.Client{Transport: rt}),
		option.WithEndpoint("https://sheets.example.test/"),
	)
	require.NoError(t, err)
	return NewStore(svc, "sheet-id")
}

func TestReadAll(t *testing.T) {
	s := testStore(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.URL.Path, "/v4/spreadsheets/sheet-id/values/")
		assert.Contains(t, r.URL.Path, "'Dados Brutos'")
		return reply(`{"range":"'Dados Brutos'!A1:C3","majorDimension":"ROWS","values":[["ID","Produto"],["1","Fortisol",2],[]]}`), nil
	})

	rows, err := s.ReadAll(context.Background(), "Dados Brutos")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"ID", "Produto"}, {"1", "Fortisol", "2"}, {}}, rows)
}

func TestReadColumn(t *testing.T) {
	s := testStore(t, func(r *http.Request) (*http.Response, error) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "!C:C"), r.URL.Path)
		return reply(`{"values":[["ID do Pedido Yampi"],["100"],[],["00102"]]}`), nil
	})

	col, err := s.ReadColumn(context.Background(), "Pedidos Processados", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID do Pedido Yampi", "100", "", "00102"}, col)
}

func TestAppend(t *testing.T) {
	var sent gsheets.ValueRange
	s := testStore(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, ":append"), r.URL.Path)
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		assert.Equal(t, "INSERT_ROWS", r.URL.Query().Get("insertDataOption"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		return reply(`{"spreadsheetId":"sheet-id"}`), nil
	})

	err := s.Append(context.Background(), "Pedidos Processados", [][]any{{"2024-01-01", "00102", 3}})
	require.NoError(t, err)
	require.Len(t, sent.Values, 1)
	assert.Equal(t, "00102", sent.Values[0][1])
	assert.Equal(t, float64(3), sent.Values[0][2])
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'Pedidos Processados'", quoteSheet("Pedidos Processados"))
	assert.Equal(t, "'O''Brien'", quoteSheet("O'Brien"))
}

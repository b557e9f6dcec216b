package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/ASP-NET-2/ReviewProvider/pkg/errors"
)

type stubDoer struct {
	status int
	body   string
	err    error

	gotURL string
}

func (d *stubDoer) Do(_ context.Context, req *http.Request) (*http.Response, error) {
	d.gotURL = req.URL.String()
	if d.err != nil {
		return nil, d.err
	}
	return &http.Response{
		StatusCode: d.status,
		Body:       io.NopCloser(strings.NewReader(d.body)),
	}, nil
}

func newTestClient(doer *stubDoer) *Client {
	return NewClient(doer, "http://catalog:8001", slog.New(slog.DiscardHandler))
}

func TestEnsureProductExists_Found(t *testing.T) {
	doer := &stubDoer{status: http.StatusOK, body: `{"data":{"id":"prod-1"}}`}
	client := newTestClient(doer)

	err := client.EnsureProductExists(context.Background(), "prod-1")
	assert.NoError(t, err)
	assert.Equal(t, "http://catalog:8001/api/v1/products/prod-1", doer.gotURL)
}

func TestEnsureProductExists_NotFound(t *testing.T) {
	doer := &stubDoer{status: http.StatusNotFound, body: `{"error":{"code":"NOT_FOUND","message":"product not found"}}`}
	client := newTestClient(doer)

	err := client.EnsureProductExists(context.Background(), "prod-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEnsureProductExists_Unreachable(t *testing.T) {
	doer := &stubDoer{err: errors.New("dial tcp: connection refused")}
	client := newTestClient(doer)

	err := client.EnsureProductExists(context.Background(), "prod-1")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestEnsureProductExists_DownstreamError(t *testing.T) {
	doer := &stubDoer{status: http.StatusInternalServerError, body: "oops"}
	client := newTestClient(doer)

	err := client.EnsureProductExists(context.Background(), "prod-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

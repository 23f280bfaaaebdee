package form

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinestudio/trine-server/internal/errors"
)

func TestNewTransport_LogWhenNoEndpoint(t *testing.T) {
	tr := NewTransport(TransportConfig{Endpoint: "  "}, nil)
	_, ok := tr.(*LogTransport)
	assert.True(t, ok)

	record := url.Values{"artistName": {"Synapse"}}
	assert.NoError(t, tr.Send(context.Background(), record))
}

func TestLogTransport_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewLogTransport(nil).Send(ctx, url.Values{}), context.Canceled)
}

func TestHTTPTransport_PostsFormEncodedRecord(t *testing.T) {
	var received url.Values
	var contentType string
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		received, _ = url.ParseQuery(string(body))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr := NewTransport(TransportConfig{Endpoint: server.URL}, nil)
	record := url.Values{
		"artistName":        {"Algo Rhythm"},
		"agreementCheckbox": {"true"},
	}
	require.NoError(t, tr.Send(context.Background(), record))

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, DefaultFormName, received.Get("form-name"))
	assert.Equal(t, "Algo Rhythm", received.Get("artistName"))
	assert.Equal(t, "true", received.Get("agreementCheckbox"))
}

func TestHTTPTransport_CustomFormName(t *testing.T) {
	var formName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		formName = r.PostForm.Get("form-name")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	tr := NewTransport(TransportConfig{Endpoint: server.URL, FormName: "demo-drop"}, nil)
	require.NoError(t, tr.Send(context.Background(), url.Values{}))
	assert.Equal(t, "demo-drop", formName)
}

func TestHTTPTransport_Non2xxIsFailureWithoutRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "form backend down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tr := NewTransport(TransportConfig{Endpoint: server.URL}, nil)
	err := tr.Send(context.Background(), url.Values{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "form backend down")
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTPTransport_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	tr := NewTransport(TransportConfig{Endpoint: endpoint, Timeout: time.Second}, nil)
	assert.Error(t, tr.Send(context.Background(), url.Values{}))
}

func TestEngine_WithHTTPTransport(t *testing.T) {
	var received url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		received = r.PostForm
	}))

	e := New(NewTransport(TransportConfig{Endpoint: server.URL}, nil))
	fillRequired(t, e)
	advanceTo(t, e, 5)

	_, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Test", received.Get("artistName"))
	assert.Equal(t, DefaultFormName, received.Get("form-name"))

	// Unreachable endpoint: failed, data intact.
	server.Close()
	e = New(NewTransport(TransportConfig{Endpoint: server.URL}, nil))
	fillRequired(t, e)
	advanceTo(t, e, 5)

	_, err = e.Submit(context.Background())
	assert.ErrorIs(t, err, errors.ErrTransportFailed)
	assert.Equal(t, StateFailed, e.State())
	assert.Equal(t, "Test", e.Snapshot().Submission.Identity.ArtistName)
}

func TestTransportFunc(t *testing.T) {
	var got url.Values
	tr := TransportFunc(func(_ context.Context, record url.Values) error {
		got = record
		return nil
	})
	require.NoError(t, tr.Send(context.Background(), url.Values{"a": {"b"}}))
	assert.Equal(t, "b", got.Get("a"))
}

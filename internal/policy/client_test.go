package policy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ClientSuite struct {
	suite.Suite
	server   *httptest.Server
	handler  http.HandlerFunc
	lastURL  string
	metrics  *Metrics
	client   *Client
	registry *prometheus.Registry
}

func (s *ClientSuite) SetupTest() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Device_access":"Permitted"}`))
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lastURL = r.URL.RequestURI()
		s.handler(w, r)
	}))
	s.registry = prometheus.NewRegistry()
	s.metrics = NewMetrics(s.registry)
	s.client = New(Config{Name: "policy", BaseURL: s.server.URL, Timeout: time.Second}, WithMetrics(s.metrics))
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) TestQuery_PreservesParameterOrder() {
	params := Params{}.
		Add("access_token", "tok en").
		Add("scope", "DeviceId").
		Add("username", "alice").
		Add("api_key", "k&1")

	body, err := s.client.Query(context.Background(), "/api/device", params)
	s.Require().NoError(err)
	s.Equal("Permitted", body["Device_access"])
	s.Equal("/api/device?access_token=tok+en&scope=DeviceId&username=alice&api_key=k%261", s.lastURL)
}

func (s *ClientSuite) TestQuery_NoParams() {
	_, err := s.client.Query(context.Background(), "/get_current_tokens", nil)
	s.Require().NoError(err)
	s.Equal("/get_current_tokens", s.lastURL)
}

func (s *ClientSuite) TestQuery_NonSuccessStatus() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"Device_access":"Permitted"}`))
	}

	_, err := s.client.Query(context.Background(), "/api/device", nil)
	var pe *Error
	s.Require().ErrorAs(err, &pe)
	s.Equal(ErrorBadStatus, pe.Category)
	s.Equal(http.StatusServiceUnavailable, pe.StatusCode)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.QueryErrors.WithLabelValues("/api/device", "bad_status")))
}

func (s *ClientSuite) TestQuery_UnparseableBody() {
	for name, payload := range map[string]string{
		"garbage":    "not json",
		"json array": `["Permitted"]`,
		"json null":  "null",
	} {
		s.Run(name, func() {
			s.handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(payload))
			}
			_, err := s.client.Query(context.Background(), "/api/device", nil)
			s.Equal(ErrorBadData, Category(err))
		})
	}
}

func (s *ClientSuite) TestQuery_Latin1Body() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		// "café" with é encoded as a single ISO-8859-1 byte
		_, _ = w.Write([]byte("{\"note\":\"caf\xe9\"}"))
	}
	body, err := s.client.Query(context.Background(), "/api/device", nil)
	s.Require().NoError(err)
	s.Equal("café", body["note"])
}

func (s *ClientSuite) TestQuery_Timeout() {
	release := make(chan struct{})
	defer close(release)
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}
	client := New(Config{BaseURL: s.server.URL, Timeout: 50 * time.Millisecond})

	_, err := client.Query(context.Background(), "/api/device", nil)
	s.Equal(ErrorTimeout, Category(err))
}

func (s *ClientSuite) TestQuery_Unreachable() {
	s.server.Close()
	_, err := s.client.Query(context.Background(), "/api/device", nil)
	s.Equal(ErrorUnreachable, Category(err))
}

func TestQuery_TransportFailureFromDoer(t *testing.T) {
	client := New(Config{BaseURL: "http://policy.invalid", HTTPClient: doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection reset by peer")
	})})

	_, err := client.Query(context.Background(), "/oauth/token", Params{}.Add("grant_type", "refresh_token"))
	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorUnreachable, pe.Category)
	assert.Equal(t, "/oauth/token", pe.Endpoint)
	assert.Contains(t, pe.Error(), "connection reset by peer")
}

func TestPermitted(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]any
		want    bool
		wantErr bool
	}{
		{name: "permitted", body: map[string]any{"Location_access": "Permitted"}, want: true},
		{name: "denied", body: map[string]any{"Location_access": "Denied"}},
		{name: "case sensitive", body: map[string]any{"Location_access": "permitted"}},
		{name: "non-string value", body: map[string]any{"Location_access": true}},
		{name: "missing field", body: map[string]any{"Device_access": "Permitted"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Permitted(tt.body, "Location_access")
			if tt.wantErr {
				assert.Equal(t, ErrorBadData, Category(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_EncodeDecodesToOriginalValues(t *testing.T) {
	params := Params{}.
		Add("username", "o'neil (test)*").
		Add("api_key", "k~1!")

	encoded := params.Encode()
	assert.Equal(t, "username=o%27neil+%28test%29%2A&api_key=k~1%21", encoded)

	decoded, err := url.ParseQuery(encoded)
	require.NoError(t, err)
	assert.Equal(t, "o'neil (test)*", decoded.Get("username"))
	assert.Equal(t, "k~1!", decoded.Get("api_key"))
	assert.Empty(t, Params{}.Encode())
}

func TestStringField(t *testing.T) {
	body := map[string]any{"access_token": "a", "empty": "", "num": 3.0}

	v, ok := StringField(body, "access_token")
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = StringField(body, "empty")
	assert.False(t, ok)
	_, ok = StringField(body, "num")
	assert.False(t, ok)
	_, ok = StringField(body, "missing")
	assert.False(t, ok)
}

func TestCategory_NonPolicyError(t *testing.T) {
	assert.Equal(t, ErrorInternal, Category(errors.New("plain")))
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

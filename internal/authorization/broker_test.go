package authorization

//go:generate mockgen -source=broker.go -destination=mocks/mocks.go -package=mocks CredentialSource,Querier

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"pbd/internal/authorization/mocks"
	"pbd/internal/credential"
	"pbd/internal/location"
	"pbd/internal/policy"
)

const testApp = "app.test"

var testCred = credential.AppCredential{
	AccessToken:  "A",
	RefreshToken: "R",
	ClientID:     "C",
	ClientSecret: "S",
	APIKey:       "K",
}

type BrokerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	creds   *mocks.MockCredentialSource
	policy  *mocks.MockQuerier
	metrics *Metrics
	broker  *Broker
}

func (s *BrokerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.creds = mocks.NewMockCredentialSource(s.ctrl)
	s.policy = mocks.NewMockQuerier(s.ctrl)
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.broker = New(s.creds, s.policy, Config{Username: "alice", AuthenticationEnabled: true}, WithMetrics(s.metrics))
}

func (s *BrokerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestBrokerSuite(t *testing.T) {
	suite.Run(t, new(BrokerSuite))
}

func (s *BrokerSuite) TestAuthorize_QueryShapes() {
	tests := []struct {
		name     string
		req      Request
		endpoint string
		params   policy.Params
		response map[string]any
	}{
		{
			name:     "device identifier",
			req:      Request{AppID: testApp, Capability: DeviceID},
			endpoint: "/api/device",
			params: policy.Params{
				{Key: "access_token", Value: "A"},
				{Key: "scope", Value: "DeviceId"},
				{Key: "username", Value: "alice"},
				{Key: "api_key", Value: "K"},
			},
			response: map[string]any{"Device_access": "Permitted"},
		},
		{
			name:     "voicemail tag uses its own scope",
			req:      Request{AppID: testApp, Capability: VoiceMailAlphaTag},
			endpoint: "/api/device",
			params: policy.Params{
				{Key: "access_token", Value: "A"},
				{Key: "scope", Value: "VoiceMailAlphaTag"},
				{Key: "username", Value: "alice"},
				{Key: "api_key", Value: "K"},
			},
			response: map[string]any{"Device_access": "Permitted"},
		},
		{
			name: "location updates truncate duration to seconds",
			req: Request{
				AppID:         testApp,
				Capability:    LocationUpdates,
				Provider:      location.ProviderFine,
				MinTimeMillis: 1500,
				MinDistance:   10,
			},
			endpoint: "/api/current_Location",
			params: policy.Params{
				{Key: "access_token", Value: "A"},
				{Key: "scope", Value: "Fine"},
				{Key: "username", Value: "alice"},
				{Key: "duration", Value: "1"},
				{Key: "distance", Value: "10.0"},
			},
			response: map[string]any{"Location_access": "Permitted"},
		},
		{
			name: "location updates fractional distance",
			req: Request{
				AppID:         testApp,
				Capability:    LocationUpdates,
				Provider:      location.ProviderCoarse,
				MinTimeMillis: 999,
				MinDistance:   2.5,
			},
			endpoint: "/api/current_Location",
			params: policy.Params{
				{Key: "access_token", Value: "A"},
				{Key: "scope", Value: "Coarse"},
				{Key: "username", Value: "alice"},
				{Key: "duration", Value: "0"},
				{Key: "distance", Value: "2.5"},
			},
			response: map[string]any{"Location_access": "Permitted"},
		},
		{
			name:     "single location",
			req:      Request{AppID: testApp, Capability: SingleLocation, Provider: location.ProviderCoarse},
			endpoint: "/api/single_Location",
			params: policy.Params{
				{Key: "access_token", Value: "A"},
				{Key: "scope", Value: "Coarse"},
				{Key: "username", Value: "alice"},
				{Key: "type", Value: "Single"},
			},
			response: map[string]any{"Location_access": "Permitted"},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.creds.EXPECT().Ensure(gomock.Any(), testApp).Return(testCred, nil)
			s.policy.EXPECT().Query(gomock.Any(), tt.endpoint, tt.params).Return(tt.response, nil)

			decision, err := s.broker.Authorize(context.Background(), tt.req)
			s.Require().NoError(err)
			s.Equal(Granted, decision)
		})
	}
}

func (s *BrokerSuite) TestAuthorize_Refused() {
	s.creds.EXPECT().Ensure(gomock.Any(), testApp).Return(testCred, nil)
	s.policy.EXPECT().Query(gomock.Any(), "/api/device", gomock.Any()).
		Return(map[string]any{"Device_access": "Denied"}, nil)

	decision, err := s.broker.Authorize(context.Background(), Request{AppID: testApp, Capability: DeviceID})
	s.NoError(err)
	s.Equal(Refused, decision)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues("DeviceId", "refused")))
}

func (s *BrokerSuite) TestAuthorize_MissingDecisionFieldIsError() {
	s.creds.EXPECT().Ensure(gomock.Any(), testApp).Return(testCred, nil)
	s.policy.EXPECT().Query(gomock.Any(), "/api/device", gomock.Any()).
		Return(map[string]any{"Location_access": "Permitted"}, nil)

	decision, err := s.broker.Authorize(context.Background(), Request{AppID: testApp, Capability: SubscriberID})
	s.Error(err)
	s.Equal(Error, decision)
}

func (s *BrokerSuite) TestAuthorize_CredentialFailureSkipsPolicyQuery() {
	s.creds.EXPECT().Ensure(gomock.Any(), testApp).Return(credential.AppCredential{}, credential.ErrBootstrapFailed)

	decision, err := s.broker.Authorize(context.Background(), Request{AppID: testApp, Capability: DeviceID})
	s.ErrorIs(err, credential.ErrBootstrapFailed)
	s.Equal(Error, decision)
}

func (s *BrokerSuite) TestAuthorize_TransportFailure() {
	s.creds.EXPECT().Ensure(gomock.Any(), testApp).Return(testCred, nil)
	s.policy.EXPECT().Query(gomock.Any(), "/api/single_Location", gomock.Any()).
		Return(nil, &policy.Error{Category: policy.ErrorTimeout})

	decision, err := s.broker.Authorize(context.Background(), Request{
		AppID:      testApp,
		Capability: SingleLocation,
		Provider:   location.ProviderFine,
	})
	s.Equal(policy.ErrorTimeout, policy.Category(err))
	s.Equal(Error, decision)
}

func (s *BrokerSuite) TestAuthorize_LocationWithoutProvider() {
	decision, err := s.broker.Authorize(context.Background(), Request{AppID: testApp, Capability: LocationUpdates})
	s.ErrorIs(err, ErrProviderRequired)
	s.Equal(Error, decision)
}

func (s *BrokerSuite) TestAuthorize_UnknownCapability() {
	decision, err := s.broker.Authorize(context.Background(), Request{AppID: testApp, Capability: "Contacts"})
	s.ErrorIs(err, ErrUnknownCapability)
	s.Equal(Error, decision)
}

func TestAuthorize_AuthenticationDisabledGrantsWithoutTraffic(t *testing.T) {
	ctrl := gomock.NewController(t)
	creds := mocks.NewMockCredentialSource(ctrl)
	pq := mocks.NewMockQuerier(ctrl)
	// No expectations: any call fails the test.
	b := New(creds, pq, Config{Username: "alice", AuthenticationEnabled: false})

	for _, c := range IdentifierCapabilities {
		d, err := b.Authorize(context.Background(), Request{AppID: testApp, Capability: c})
		require.NoError(t, err)
		assert.Equal(t, Granted, d)
	}
	d, err := b.Authorize(context.Background(), Request{AppID: testApp, Capability: LocationUpdates, Provider: location.ProviderFine})
	require.NoError(t, err)
	assert.Equal(t, Granted, d)
}

func TestParseCapability(t *testing.T) {
	c, err := ParseCapability("deviceid")
	require.NoError(t, err)
	assert.Equal(t, DeviceID, c)
	assert.True(t, c.IsIdentifier())
	assert.Equal(t, "/api/device", c.Endpoint())

	c, err = ParseCapability("SingleLocation")
	require.NoError(t, err)
	assert.False(t, c.IsIdentifier())
	assert.Equal(t, "/api/single_Location", c.Endpoint())

	_, err = ParseCapability("Contacts")
	assert.Error(t, err)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "10.0", formatFloat(10))
	assert.Equal(t, "0.0", formatFloat(0))
	assert.Equal(t, "2.5", formatFloat(2.5))
	assert.Equal(t, "0.1", formatFloat(0.1))
	assert.Equal(t, "5.0E-4", formatFloat(0.0005))
	assert.Equal(t, "1.0E7", formatFloat(1e7))
	assert.Equal(t, "1.2345678E7", formatFloat(12345678))
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "granted", Granted.String())
	assert.Equal(t, "refused", Refused.String())
	assert.Equal(t, "error", Error.String())
}

package subscription

//go:generate mockgen -source=registry.go -destination=mocks/mocks.go -package=mocks Platform

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"pbd/internal/location"
	"pbd/internal/subscription/mocks"
)

type RegistrySuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	platform *mocks.MockPlatform
	metrics  *Metrics
	registry *Registry
}

func (s *RegistrySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.platform = mocks.NewMockPlatform(s.ctrl)
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.registry = NewRegistry(s.platform, WithMetrics(s.metrics))
}

func (s *RegistrySuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) TestRegisterOrGet_IsIdempotent() {
	first := s.registry.RegisterOrGet("app.a")
	second := s.registry.RegisterOrGet("app.a")

	s.Equal(first.ListenerID, second.ListenerID)
	s.Equal(1, s.registry.Len())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Active))

	other := s.registry.RegisterOrGet("app.b")
	s.NotEqual(first.ListenerID, other.ListenerID)
}

func (s *RegistrySuite) TestRegisterOrGet_ConcurrentCallersShareOneToken() {
	var wg sync.WaitGroup
	ids := make([]string, 50)
	for i := range ids {
		wg.Go(func() {
			ids[i] = s.registry.RegisterOrGet("app.race").ListenerID
		})
	}
	wg.Wait()
	for _, id := range ids {
		s.Equal(ids[0], id)
	}
	s.Equal(1, s.registry.Len())
}

func (s *RegistrySuite) TestRegister_ReportsCreation() {
	sub, created := s.registry.Register("app.a")
	s.True(created)

	again, created := s.registry.Register("app.a")
	s.False(created)
	s.Equal(sub.ListenerID, again.ListenerID)
}

func (s *RegistrySuite) TestDiscard_SkipsPlatform() {
	s.registry.RegisterOrGet("app.a")

	s.registry.Discard("app.a")
	s.registry.Discard("app.a")

	_, ok := s.registry.Get("app.a")
	s.False(ok)
	s.Equal(0, s.registry.Len())
	s.Equal(0.0, testutil.ToFloat64(s.metrics.Active))
}

func (s *RegistrySuite) TestAppsOnDifferentShardsStayIndependent() {
	for i := range 100 {
		s.registry.RegisterOrGet(fmt.Sprintf("app.%d", i))
	}
	s.Equal(100, s.registry.Len())
	s.Equal(100.0, testutil.ToFloat64(s.metrics.Active))

	s.registry.Discard("app.42")
	s.Equal(99, s.registry.Len())
	_, ok := s.registry.Get("app.41")
	s.True(ok)
	_, ok = s.registry.Get("app.42")
	s.False(ok)
}

func (s *RegistrySuite) TestSetProvider() {
	s.False(s.registry.SetProvider("app.none", location.ProviderFine))

	s.registry.RegisterOrGet("app.a")
	s.True(s.registry.SetProvider("app.a", location.ProviderCoarse))

	sub, ok := s.registry.Get("app.a")
	s.True(ok)
	s.Equal(location.ProviderCoarse, sub.Provider)
}

func (s *RegistrySuite) TestOnLocationChanged_NeverCreates() {
	_, ok := s.registry.OnLocationChanged("app.ghost")
	s.False(ok)
	s.Equal(0, s.registry.Len())
}

func (s *RegistrySuite) TestTakeUpdate_IsConsuming() {
	sub := s.registry.RegisterOrGet("app.a")
	s.registry.SetProvider("app.a", location.ProviderFine)

	_, ok := s.registry.TakeUpdate("app.a")
	s.False(ok, "nothing pending yet")

	token, ok := s.registry.OnLocationChanged("app.a")
	s.True(ok)
	s.Equal(sub.ListenerID, token)

	provider, ok := s.registry.TakeUpdate("app.a")
	s.True(ok)
	s.Equal(location.ProviderFine, provider)

	_, ok = s.registry.TakeUpdate("app.a")
	s.False(ok, "second take must see nothing")
}

func (s *RegistrySuite) TestTakeUpdate_UnknownApp() {
	_, ok := s.registry.TakeUpdate("app.none")
	s.False(ok)
}

func (s *RegistrySuite) TestRemove_StopsPlatformAndDeletes() {
	sub := s.registry.RegisterOrGet("app.a")
	s.platform.EXPECT().RemoveUpdates(gomock.Any(), sub.ListenerID).Return(nil)

	s.NoError(s.registry.Remove(context.Background(), "app.a"))
	_, ok := s.registry.Get("app.a")
	s.False(ok)
	s.Equal(0.0, testutil.ToFloat64(s.metrics.Active))

	// Second removal is a no-op: no further platform call expected.
	s.NoError(s.registry.Remove(context.Background(), "app.a"))
}

func (s *RegistrySuite) TestRemove_PlatformErrorStillDeletes() {
	sub := s.registry.RegisterOrGet("app.a")
	s.platform.EXPECT().RemoveUpdates(gomock.Any(), sub.ListenerID).Return(errors.New("service gone"))

	s.Error(s.registry.Remove(context.Background(), "app.a"))
	_, ok := s.registry.Get("app.a")
	s.False(ok)
}

func (s *RegistrySuite) TestStopUpdates_KeepsSubscription() {
	sub := s.registry.RegisterOrGet("app.a")
	s.platform.EXPECT().RemoveUpdates(gomock.Any(), sub.ListenerID).Return(nil)

	s.NoError(s.registry.StopUpdates(context.Background(), "app.a"))
	again := s.registry.RegisterOrGet("app.a")
	s.Equal(sub.ListenerID, again.ListenerID)

	s.NoError(s.registry.StopUpdates(context.Background(), "app.none"))
}

func TestNewListenerID(t *testing.T) {
	hex32 := regexp.MustCompile(`^[0-9a-f]{32}$`)
	a, b := NewListenerID(), NewListenerID()
	assert.Regexp(t, hex32, a)
	assert.NotEqual(t, a, b)
}

func TestWithListenerIDs(t *testing.T) {
	r := NewRegistry(nil, WithListenerIDs(func() string { return "fixed" }))
	assert.Equal(t, "fixed", r.RegisterOrGet("app").ListenerID)
}

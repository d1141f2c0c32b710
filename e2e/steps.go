package e2e

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

const relayWait = 3 * time.Second

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the broker is running$`, tc.brokerIsRunning)
	ctx.Step(`^the device reports "([^"]*)" as "([^"]*)"$`, tc.deviceReports)
	ctx.Step(`^the policy server answers device checks with "([^"]*)"$`, tc.answerDeviceChecks)
	ctx.Step(`^the policy server answers location checks with "([^"]*)"$`, tc.answerLocationChecks)
	ctx.Step(`^the token issuer is unreachable$`, tc.issuerUnreachable)
	ctx.Step(`^policy checks are disabled$`, tc.policyChecksDisabled)

	// Capability requests
	ctx.Step(`^app "([^"]*)" requests identifier "([^"]*)"$`, tc.requestIdentifier)
	ctx.Step(`^app "([^"]*)" requests location updates from "([^"]*)" every (\d+) ms over ([\d.]+) meters$`, tc.requestLocationUpdates)
	ctx.Step(`^app "([^"]*)" requests a single update from "([^"]*)"$`, tc.requestSingleUpdate)
	ctx.Step(`^app "([^"]*)" checks for a pending location$`, tc.checkPendingLocation)
	ctx.Step(`^app "([^"]*)" removes its location updates$`, tc.removeLocationUpdates)
	ctx.Step(`^app "([^"]*)" stops$`, tc.stop)
	ctx.Step(`^app "([^"]*)" asks for the service status$`, tc.askStatus)
	ctx.Step(`^the platform reports a (Fine|Coarse) fix at (-?[\d.]+), (-?[\d.]+)$`, tc.platformReportsFix)
	ctx.Step(`^I GET "([^"]*)" without authorization$`, tc.getWithoutAuth)
	ctx.Step(`^I GET "([^"]*)"$`, tc.getPublic)

	// Response assertions
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the result should be "([^"]*)"$`, tc.resultShouldBe)
	ctx.Step(`^the result should be a listener token$`, tc.resultShouldBeListenerToken)
	ctx.Step(`^the result should be the same listener token$`, tc.resultShouldBeSameListenerToken)
	ctx.Step(`^the result should be a new listener token$`, tc.resultShouldBeNewListenerToken)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^the broker should hold (\d+) (credentials?|subscriptions?)$`, tc.brokerShouldHold)

	// Upstream assertions
	ctx.Step(`^the token issuer should have been queried (\d+) times?$`, tc.issuerQueried)
	ctx.Step(`^the policy server should have received (\d+) refresh(?:es)?$`, tc.refreshCount)
	ctx.Step(`^refresh (\d+) should carry "([^"]*)" = "([^"]*)"$`, tc.refreshShouldCarry)
	ctx.Step(`^the last device check should carry "([^"]*)" = "([^"]*)"$`, tc.lastDeviceCheckShouldCarry)
	ctx.Step(`^the last location check should carry "([^"]*)" = "([^"]*)"$`, tc.lastLocationCheckShouldCarry)
	ctx.Step(`^no device check should have been made$`, tc.noDeviceCheck)
	ctx.Step(`^the collector should receive (\d+) (Device|Location_Update) records?$`, tc.collectorReceives)
	ctx.Step(`^the collector should receive a (Device|Location_Update) record containing "([^"]*)"$`, tc.collectorReceivesContaining)
	ctx.Step(`^the collector should receive nothing$`, tc.collectorReceivesNothing)
}

func (tc *TestContext) brokerIsRunning(context.Context) error {
	return nil
}

func (tc *TestContext) deviceReports(_ context.Context, identifier, value string) error {
	keys := map[string]string{
		"DeviceId":          "PBD_DEVICE_ID",
		"SimSerialNumber":   "PBD_DEVICE_SIM_SERIAL",
		"AndroidId":         "PBD_DEVICE_ANDROID_ID",
		"GroupIdLevel1":     "PBD_DEVICE_GID1",
		"Line1Number":       "PBD_DEVICE_LINE1",
		"SubscriberId":      "PBD_DEVICE_SUBSCRIBER_ID",
		"VoiceMailAlphaTag": "PBD_DEVICE_VOICEMAIL_TAG",
		"VoiceMailNumber":   "PBD_DEVICE_VOICEMAIL_NUMBER",
	}
	key, ok := keys[identifier]
	if !ok {
		return fmt.Errorf("unknown identifier %q", identifier)
	}
	tc.env[key] = value
	return nil
}

func (tc *TestContext) answerDeviceChecks(_ context.Context, decision string) error {
	tc.policy.setDeviceDecision(decision)
	return nil
}

func (tc *TestContext) answerLocationChecks(_ context.Context, decision string) error {
	tc.policy.setLocationDecision(decision)
	return nil
}

func (tc *TestContext) issuerUnreachable(context.Context) error {
	tc.policy.stopIssuer()
	return nil
}

func (tc *TestContext) policyChecksDisabled(context.Context) error {
	if tc.server != nil {
		return fmt.Errorf("broker already started")
	}
	tc.env["PBD_AUTHENTICATION_ENABLED"] = "false"
	return nil
}

func (tc *TestContext) requestIdentifier(_ context.Context, appID, identifier string) error {
	return tc.Do(http.MethodGet, "/v1/identifiers/"+identifier, appID, nil)
}

func (tc *TestContext) requestLocationUpdates(_ context.Context, appID, provider string, minTime int64, minDistance float64) error {
	return tc.Do(http.MethodPost, "/v1/location/updates", appID, map[string]any{
		"provider":     provider,
		"min_time_ms":  minTime,
		"min_distance": minDistance,
	})
}

func (tc *TestContext) requestSingleUpdate(_ context.Context, appID, provider string) error {
	return tc.Do(http.MethodPost, "/v1/location/single", appID, map[string]any{"provider": provider})
}

func (tc *TestContext) checkPendingLocation(_ context.Context, appID string) error {
	return tc.Do(http.MethodGet, "/v1/location/pending", appID, nil)
}

func (tc *TestContext) removeLocationUpdates(_ context.Context, appID string) error {
	return tc.Do(http.MethodPost, "/v1/location/remove-updates", appID, nil)
}

func (tc *TestContext) stop(_ context.Context, appID string) error {
	return tc.Do(http.MethodPost, "/v1/location/stop", appID, nil)
}

func (tc *TestContext) askStatus(_ context.Context, appID string) error {
	return tc.Do(http.MethodGet, "/v1/status", appID, nil)
}

func (tc *TestContext) platformReportsFix(_ context.Context, provider string, lat, lon float64) error {
	return tc.Do(http.MethodPost, "/platform/location", "", map[string]any{
		"latitude":  lat,
		"longitude": lon,
		"provider":  provider,
	})
}

func (tc *TestContext) getWithoutAuth(_ context.Context, path string) error {
	return tc.Do(http.MethodGet, path, "", nil)
}

func (tc *TestContext) getPublic(_ context.Context, path string) error {
	return tc.Do(http.MethodGet, path, "", nil)
}

func (tc *TestContext) responseStatusShouldBe(_ context.Context, expected int) error {
	if tc.LastResponse == nil {
		return fmt.Errorf("no response recorded")
	}
	if tc.LastResponse.StatusCode != expected {
		return fmt.Errorf("expected status %d but got %d: %s", expected, tc.LastResponse.StatusCode, tc.LastResponseBody)
	}
	return nil
}

func (tc *TestContext) resultShouldBe(_ context.Context, expected string) error {
	got, err := tc.result()
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected result %q but got %q", expected, got)
	}
	return nil
}

func (tc *TestContext) resultShouldBeListenerToken(context.Context) error {
	got, err := tc.result()
	if err != nil {
		return err
	}
	if got == "" || got == "refused" || got == "error" {
		return fmt.Errorf("expected a listener token but got %q", got)
	}
	tc.listenerToken = got
	return nil
}

func (tc *TestContext) resultShouldBeSameListenerToken(context.Context) error {
	got, err := tc.result()
	if err != nil {
		return err
	}
	if got != tc.listenerToken {
		return fmt.Errorf("expected listener token %q but got %q", tc.listenerToken, got)
	}
	return nil
}

func (tc *TestContext) resultShouldBeNewListenerToken(ctx context.Context) error {
	previous := tc.listenerToken
	if err := tc.resultShouldBeListenerToken(ctx); err != nil {
		return err
	}
	if tc.listenerToken == previous {
		return fmt.Errorf("expected a fresh listener token, got the previous one %q", previous)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(_ context.Context, field, expected string) error {
	v, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != expected {
		return fmt.Errorf("expected %s=%q but got %q", field, expected, got)
	}
	return nil
}

func (tc *TestContext) brokerShouldHold(_ context.Context, n int, what string) error {
	if err := tc.Do(http.MethodGet, "/health", "", nil); err != nil {
		return err
	}
	v, err := tc.GetResponseField("counts")
	if err != nil {
		return err
	}
	counts, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("counts is %T", v)
	}
	key := strings.TrimSuffix(what, "s") + "s"
	got, _ := counts[key].(float64)
	if int(got) != n {
		return fmt.Errorf("expected %d %s but got %v", n, key, counts[key])
	}
	return nil
}

func (tc *TestContext) issuerQueried(_ context.Context, n int) error {
	if got := tc.policy.issuedCount(); got != n {
		return fmt.Errorf("expected %d bootstrap queries but got %d", n, got)
	}
	return nil
}

func (tc *TestContext) refreshCount(_ context.Context, n int) error {
	if got := len(tc.policy.refreshLog()); got != n {
		return fmt.Errorf("expected %d refreshes but got %d", n, got)
	}
	return nil
}

func (tc *TestContext) refreshShouldCarry(_ context.Context, i int, key, value string) error {
	log := tc.policy.refreshLog()
	if i < 1 || i > len(log) {
		return fmt.Errorf("refresh %d not found, %d recorded", i, len(log))
	}
	if got := log[i-1].Get(key); got != value {
		return fmt.Errorf("refresh %d: expected %s=%q but got %q", i, key, value, got)
	}
	return nil
}

func (tc *TestContext) lastDeviceCheckShouldCarry(_ context.Context, key, value string) error {
	q, ok := tc.policy.lastDeviceCheck()
	if !ok {
		return fmt.Errorf("no device check recorded")
	}
	if got := q.Get(key); got != value {
		return fmt.Errorf("device check: expected %s=%q but got %q", key, value, got)
	}
	return nil
}

func (tc *TestContext) lastLocationCheckShouldCarry(_ context.Context, key, value string) error {
	q, ok := tc.policy.lastLocationCheck()
	if !ok {
		return fmt.Errorf("no location check recorded")
	}
	if got := q.Get(key); got != value {
		return fmt.Errorf("location check: expected %s=%q but got %q", key, value, got)
	}
	return nil
}

func (tc *TestContext) noDeviceCheck(context.Context) error {
	if _, ok := tc.policy.lastDeviceCheck(); ok {
		return fmt.Errorf("expected no device check")
	}
	return nil
}

func (tc *TestContext) collectorReceives(_ context.Context, n int, dataType string) error {
	eventually(relayWait, func() bool { return len(tc.collector.records(dataType)) >= n })
	// Give a stray duplicate the chance to arrive before counting.
	time.Sleep(200 * time.Millisecond)
	if got := len(tc.collector.records(dataType)); got != n {
		return fmt.Errorf("expected %d %s records but got %d: %v", n, dataType, got, tc.collector.records(dataType))
	}
	return nil
}

func (tc *TestContext) collectorReceivesContaining(_ context.Context, dataType, fragment string) error {
	found := eventually(relayWait, func() bool {
		for _, r := range tc.collector.records(dataType) {
			if strings.Contains(r, fragment) {
				return true
			}
		}
		return false
	})
	if !found {
		return fmt.Errorf("no %s record containing %q, got %v", dataType, fragment, tc.collector.records(dataType))
	}
	return nil
}

func (tc *TestContext) collectorReceivesNothing(context.Context) error {
	time.Sleep(300 * time.Millisecond)
	if n := tc.collector.total(); n != 0 {
		return fmt.Errorf("expected no records but got %d", n)
	}
	return nil
}


// Where: internal/domain/rollout/schedule_test.go
// What: Tests for traffic-shift schedule lookup and expansion.
// Why: Keep CodeDeploy config names and step timing stable.
package rollout

import (
	"reflect"
	"testing"
	"time"
)

func TestLookupAcceptsShortAndCodeDeployNames(t *testing.T) {
	cases := map[string]string{
		"":                        "Canary10Percent5Minutes",
		"canary10percent5minutes": "Canary10Percent5Minutes",
		"CodeDeployDefault.LambdaLinear10PercentEvery1Minute": "Linear10PercentEvery1Minute",
		"  AllAtOnce ": "AllAtOnce",
	}
	for input, want := range cases {
		got, err := Lookup(input)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", input, err)
		}
		if got.Name != want {
			t.Fatalf("Lookup(%q) = %s, want %s", input, got.Name, want)
		}
	}
}

func TestLookupRejectsUnknown(t *testing.T) {
	if _, err := Lookup("Canary50Percent1Minute"); err == nil {
		t.Fatal("expected error for unknown schedule")
	}
}

func TestDefaultScheduleIsTenPercentCanary(t *testing.T) {
	if Default.DeploymentConfigName() != "CodeDeployDefault.LambdaCanary10Percent5Minutes" {
		t.Fatalf("unexpected config name: %s", Default.DeploymentConfigName())
	}
	want := []Step{{Percent: 10}, {Percent: 100, After: 5 * time.Minute}}
	if got := Default.Steps(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Steps() = %v, want %v", got, want)
	}
}

func TestLinearStepsReachFullTraffic(t *testing.T) {
	steps := Linear10PercentEvery2Minutes.Steps()
	if len(steps) != 10 {
		t.Fatalf("expected 10 steps, got %d", len(steps))
	}
	last := steps[len(steps)-1]
	if last.Percent != 100 || last.After != 18*time.Minute {
		t.Fatalf("unexpected last step: %+v", last)
	}
}

func TestAllAtOnceSingleStep(t *testing.T) {
	if got := AllAtOnce.Steps(); len(got) != 1 || got[0].Percent != 100 {
		t.Fatalf("unexpected steps: %v", got)
	}
}

func TestLinearStepsWithoutPercentageShiftAtOnce(t *testing.T) {
	for _, percentage := range []int{0, -10} {
		schedule := Schedule{Name: "Broken", Kind: KindLinear, Percentage: percentage, Interval: time.Minute}
		want := []Step{{Percent: 100}}
		if got := schedule.Steps(); !reflect.DeepEqual(got, want) {
			t.Fatalf("Steps() with %d%% = %v, want %v", percentage, got, want)
		}
	}
}

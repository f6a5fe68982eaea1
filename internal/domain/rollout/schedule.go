// Where: internal/domain/rollout/schedule.go
// What: Predefined Lambda traffic-shift schedules.
// Why: Name the canary/linear/all-at-once policies a rollout can be gated on.
package rollout

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const deploymentConfigPrefix = "CodeDeployDefault.Lambda"

var errUnknownSchedule = errors.New("unknown rollout schedule")

// Kind classifies how traffic moves from the old version to the new one.
type Kind string

const (
	KindCanary    Kind = "Canary"
	KindLinear    Kind = "Linear"
	KindAllAtOnce Kind = "AllAtOnce"
)

// Schedule is a traffic-shift policy. For canary schedules Percentage is
// shifted first and the remainder after Interval; for linear schedules
// Percentage is shifted every Interval.
type Schedule struct {
	Name       string
	Kind       Kind
	Percentage int
	Interval   time.Duration
}

// Step is one traffic shift: Percent of traffic on the new version at After.
type Step struct {
	Percent int
	After   time.Duration
}

var (
	Canary10Percent5Minutes       = canary(5)
	Canary10Percent10Minutes      = canary(10)
	Canary10Percent15Minutes      = canary(15)
	Canary10Percent30Minutes      = canary(30)
	Linear10PercentEvery1Minute   = linear(1, "Minute")
	Linear10PercentEvery2Minutes  = linear(2, "Minutes")
	Linear10PercentEvery3Minutes  = linear(3, "Minutes")
	Linear10PercentEvery10Minutes = linear(10, "Minutes")
	AllAtOnce                     = Schedule{Name: "AllAtOnce", Kind: KindAllAtOnce, Percentage: 100}
)

// Default is the schedule used when none is configured.
var Default = Canary10Percent5Minutes

func canary(minutes int) Schedule {
	return Schedule{
		Name:       fmt.Sprintf("Canary10Percent%dMinutes", minutes),
		Kind:       KindCanary,
		Percentage: 10,
		Interval:   time.Duration(minutes) * time.Minute,
	}
}

func linear(minutes int, unit string) Schedule {
	return Schedule{
		Name:       fmt.Sprintf("Linear10PercentEvery%d%s", minutes, unit),
		Kind:       KindLinear,
		Percentage: 10,
		Interval:   time.Duration(minutes) * time.Minute,
	}
}

// All returns the predefined schedules, canary first.
func All() []Schedule {
	return []Schedule{
		Canary10Percent5Minutes,
		Canary10Percent10Minutes,
		Canary10Percent15Minutes,
		Canary10Percent30Minutes,
		Linear10PercentEvery1Minute,
		Linear10PercentEvery2Minutes,
		Linear10PercentEvery3Minutes,
		Linear10PercentEvery10Minutes,
		AllAtOnce,
	}
}

// Lookup resolves a schedule by short name or CodeDeploy config name.
// Matching is case-insensitive; an empty name yields Default.
func Lookup(name string) (Schedule, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Default, nil
	}
	short := trimmed
	if len(short) > len(deploymentConfigPrefix) &&
		strings.EqualFold(short[:len(deploymentConfigPrefix)], deploymentConfigPrefix) {
		short = short[len(deploymentConfigPrefix):]
	}
	for _, schedule := range All() {
		if strings.EqualFold(schedule.Name, short) {
			return schedule, nil
		}
	}
	return Schedule{}, fmt.Errorf("%w: %s", errUnknownSchedule, trimmed)
}

// DeploymentConfigName returns the CodeDeploy predefined config name.
func (s Schedule) DeploymentConfigName() string {
	return deploymentConfigPrefix + s.Name
}

// Steps expands the schedule into cumulative traffic steps.
func (s Schedule) Steps() []Step {
	switch s.Kind {
	case KindCanary:
		return []Step{
			{Percent: s.Percentage, After: 0},
			{Percent: 100, After: s.Interval},
		}
	case KindLinear:
		if s.Percentage <= 0 {
			return []Step{{Percent: 100, After: 0}}
		}
		steps := []Step{}
		var offset time.Duration
		for percent := s.Percentage; ; percent += s.Percentage {
			if percent > 100 {
				percent = 100
			}
			steps = append(steps, Step{Percent: percent, After: offset})
			if percent == 100 {
				return steps
			}
			offset += s.Interval
		}
	default:
		return []Step{{Percent: 100, After: 0}}
	}
}

// Describe renders a one-line human summary.
func (s Schedule) Describe() string {
	switch s.Kind {
	case KindCanary:
		return fmt.Sprintf("shift %d%%, hold %s, then shift the rest", s.Percentage, s.Interval)
	case KindLinear:
		return fmt.Sprintf("shift %d%% every %s", s.Percentage, s.Interval)
	default:
		return "shift all traffic at once"
	}
}

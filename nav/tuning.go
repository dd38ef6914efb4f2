// nav/tuning.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import "time"

// Tuning holds the empirically-chosen constants of the step engine. The
// zero value is not useful; start from DefaultTuning.
type Tuning struct {
	// Steps shorter than this (nm) are runts: never current and never
	// the source of a turn warning.
	RuntThreshold float32 `toml:"runt_threshold_nm"`

	// Line-to-line fillets are only drawn for turns between these
	// (degrees).
	FilletMinTurn float32 `toml:"fillet_min_turn"`
	FilletMaxTurn float32 `toml:"fillet_max_turn"`

	// Course-to-altitude legs: the climb gradient assumed until the
	// observed one is known and how far past the predicted point the
	// leg is extended.
	ClimbGradient float32 `toml:"climb_gradient_ft_per_nm"`
	CAExtension   float32 `toml:"ca_extension_nm"`

	// Hold entries of the parallel/teardrop kind are reconsidered this
	// long after the entry began; the entry is switched if the aircraft
	// is more than SwitchRatio times closer to the other entry's track.
	HoldEntryRecheckSeconds float32 `toml:"hold_entry_recheck_seconds"`
	HoldEntrySwitchRatio    float32 `toml:"hold_entry_switch_ratio"`

	// A course-to-fix leg that follows a hold or procedure turn is
	// dropped if its course is within this many degrees of the hold's
	// inbound course and its fix isn't ahead of the hold fix.
	CFAfterHoldCourseTolerance float32 `toml:"cf_after_hold_course_tolerance"`

	// Optional procedure turns and holds: required if the preceding fix
	// is within RequiredAngle of the inbound course direction, skipped
	// if more than SkippedAngle from it.
	OptionalRequiredAngle float32 `toml:"optional_required_angle"`
	OptionalSkippedAngle  float32 `toml:"optional_skipped_angle"`

	// Procedure turns: the 45 degree leg is flown for this long.
	ProcedureTurnMinutes float32 `toml:"procedure_turn_minutes"`

	// Turn instructions replace the status line this long before a turn.
	TurnWarningSeconds float32 `toml:"turn_warning_seconds"`

	// Number of samples averaged for the groundspeed used for turn
	// radii and the minimum groundspeed assumed.
	GroundSpeedSamples int     `toml:"groundspeed_samples"`
	MinGroundSpeed     float32 `toml:"min_groundspeed"`

	// Full-scale course deflection (nm) before and after the final
	// approach fix and full-scale glideslope deflection in degrees.
	FullScaleEnroute    float32 `toml:"full_scale_enroute_nm"`
	FullScaleFinal      float32 `toml:"full_scale_final_nm"`
	GlideslopeFullScale float32 `toml:"glideslope_full_scale_deg"`

	// Recurring per-step errors are logged at most once per interval.
	StepErrorInterval time.Duration `toml:"step_error_interval"`
}

func DefaultTuning() Tuning {
	return Tuning{
		RuntThreshold:              0.05,
		FilletMinTurn:              6,
		FilletMaxTurn:              174,
		ClimbGradient:              200,
		CAExtension:                0.2,
		HoldEntryRecheckSeconds:    25,
		HoldEntrySwitchRatio:       2,
		CFAfterHoldCourseTolerance: 15,
		OptionalRequiredAngle:      60,
		OptionalSkippedAngle:       150,
		ProcedureTurnMinutes:       1,
		TurnWarningSeconds:         10,
		GroundSpeedSamples:         5,
		MinGroundSpeed:             60,
		FullScaleEnroute:           1,
		FullScaleFinal:             0.3,
		GlideslopeFullScale:        0.7,
		StepErrorInterval:          time.Minute,
	}
}

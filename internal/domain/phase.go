package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PhaseNames are the eight phase labels, indexed from New Moon.
var PhaseNames = [8]string{
	"New Moon",
	"Waxing Crescent Moon",
	"First Quarter Moon",
	"Waxing Gibbous Moon",
	"Full Moon",
	"Waning Gibbous Moon",
	"Last Quarter Moon",
	"Waning Crescent Moon",
}

var (
	lunationsAtEpoch = decimal.RequireFromString("0.20439731")
	lunationsPerDay  = decimal.RequireFromString("0.03386319269")
	secondsPerDay    = decimal.NewFromInt(86400)
	phaseHalfStep    = decimal.RequireFromString("0.5")
	phaseSteps       = decimal.NewFromInt(8)
)

// LunarPhaseName names the moon's phase at ref. Elapsed time is measured from
// 2001-01-01 midnight in zone (nil means UTC), truncated to whole seconds.
func LunarPhaseName(ref time.Time, zone *time.Location) string {
	if zone == nil {
		zone = time.UTC
	}
	epoch := time.Date(2001, 1, 1, 0, 0, 0, 0, zone)

	elapsed := ref.Sub(epoch)
	secs := int64(elapsed / time.Second)
	if elapsed%time.Second < 0 {
		secs--
	}

	days := decimal.NewFromInt(secs).DivRound(secondsPerDay, 28)
	lunations := lunationsAtEpoch.Add(days.Mul(lunationsPerDay))
	pos := lunations.Mod(decimal.NewFromInt(1))

	index := pos.Mul(phaseSteps).Add(phaseHalfStep).Floor().IntPart() % 8
	if index < 0 {
		index += 8
	}
	return PhaseNames[index]
}

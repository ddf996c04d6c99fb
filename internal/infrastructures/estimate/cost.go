package estimate

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/avialine/crew-recovery/internal/domain/models"
)

// CostConfig is the raw pricing table for the standard estimator. Monetary
// values arrive as strings from configuration and are parsed into decimals
// once at construction.
type CostConfig struct {
	HourlyRates        map[string]string
	DefaultHourlyRate  string
	PerDiemDaily       string
	DeadheadFlat       string
	DeadheadPerMinute  string
	HotelNight         string
	OvertimeCycleHours float64
	OvertimeMultiplier string
}

// StandardCostEstimator prices a hypothetical assignment from a fixed table:
// position hourly rates, per-diem by duty day, deadhead positioning costs, a
// hotel night when the period ends away from home base, and an overtime
// premium once the duty cycle crosses the configured threshold. Identical
// inputs always price identically.
type StandardCostEstimator struct {
	hourlyRates        map[models.Position]decimal.Decimal
	defaultHourlyRate  decimal.Decimal
	perDiemDaily       decimal.Decimal
	deadheadFlat       decimal.Decimal
	deadheadPerMinute  decimal.Decimal
	hotelNight         decimal.Decimal
	overtimeCycleHours float64
	overtimeMultiplier decimal.Decimal
}

func NewStandardCostEstimator(cfg CostConfig) (*StandardCostEstimator, error) {
	defaultRate, err := parseMoney("default_hourly_rate", cfg.DefaultHourlyRate)
	if err != nil {
		return nil, err
	}
	perDiem, err := parseMoney("per_diem_daily", cfg.PerDiemDaily)
	if err != nil {
		return nil, err
	}
	dhFlat, err := parseMoney("deadhead_flat", cfg.DeadheadFlat)
	if err != nil {
		return nil, err
	}
	dhPerMinute, err := parseMoney("deadhead_per_minute", cfg.DeadheadPerMinute)
	if err != nil {
		return nil, err
	}
	hotel, err := parseMoney("hotel_night", cfg.HotelNight)
	if err != nil {
		return nil, err
	}
	otMultiplier, err := parseMoney("overtime_multiplier", cfg.OvertimeMultiplier)
	if err != nil {
		return nil, err
	}

	rates := make(map[models.Position]decimal.Decimal, len(cfg.HourlyRates))
	for position, raw := range cfg.HourlyRates {
		rate, err := parseMoney("hourly_rates."+position, raw)
		if err != nil {
			return nil, err
		}
		rates[models.Position(position)] = rate
	}

	return &StandardCostEstimator{
		hourlyRates:        rates,
		defaultHourlyRate:  defaultRate,
		perDiemDaily:       perDiem,
		deadheadFlat:       dhFlat,
		deadheadPerMinute:  dhPerMinute,
		hotelNight:         hotel,
		overtimeCycleHours: cfg.OvertimeCycleHours,
		overtimeMultiplier: otMultiplier,
	}, nil
}

func (e *StandardCostEstimator) Estimate(_ context.Context, identity models.CrewIdentity, state models.DutyState,
	period models.ProposedDutyPeriod, logistics models.LogisticsEstimate) (models.CostEstimate, error) {
	rate := e.rateFor(identity.Position)

	flightHours := decimal.NewFromFloat(period.TotalFlightHours())
	payCredit := rate.Mul(flightHours)

	dutyDays := math.Ceil(period.TotalDuty().Hours() / 24)
	if dutyDays < 1 {
		dutyDays = 1
	}
	perDiem := e.perDiemDaily.Mul(decimal.NewFromFloat(dutyDays))

	deadhead := decimal.Zero
	if logistics.PositioningRequired {
		deadhead = e.deadheadFlat.Add(e.deadheadPerMinute.Mul(decimal.NewFromInt(int64(logistics.TravelMinutes))))
	}

	hotel := decimal.Zero
	if dest := finalDestination(period); dest != "" && dest != identity.HomeBase {
		hotel = e.hotelNight
	}

	overtime := decimal.Zero
	dutyHours := period.TotalDuty().Hours()
	if overage := state.DutyHoursCycle + dutyHours - e.overtimeCycleHours; overage > 0 {
		if overage > dutyHours {
			overage = dutyHours
		}
		overtime = rate.Mul(e.overtimeMultiplier).Mul(decimal.NewFromFloat(overage))
	}

	total := payCredit.Add(perDiem).Add(deadhead).Add(hotel).Add(overtime)

	return models.CostEstimate{
		PayCredit:       payCredit,
		PerDiem:         perDiem,
		DeadheadCost:    deadhead,
		HotelCost:       hotel,
		OvertimePremium: overtime,
		Total:           total,
	}, nil
}

func (e *StandardCostEstimator) rateFor(position models.Position) decimal.Decimal {
	if rate, ok := e.hourlyRates[position]; ok {
		return rate
	}
	return e.defaultHourlyRate
}

func finalDestination(period models.ProposedDutyPeriod) string {
	if len(period.Segments) == 0 {
		return ""
	}
	return period.Segments[len(period.Segments)-1].Destination
}

func parseMoney(field, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s %q: %w", field, raw, err)
	}
	return value, nil
}

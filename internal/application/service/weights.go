package service

// Ranking score contributions. Every adjustment to a candidate's score is one
// of these named deltas so a dispatcher can audit why a candidate placed where
// it did.
const (
	// BaseScore is every legality-cleared candidate's starting score.
	BaseScore = 100.0

	// WarningPenalty is subtracted once per fatigue warning or advisory on
	// the candidate's verdict.
	WarningPenalty = 5.0

	// HighCostPenalty is subtracted when the total cost estimate exceeds the
	// configured high-cost threshold.
	HighCostPenalty = 10.0

	// OvertimePenalty is subtracted on top of HighCostPenalty when the
	// estimate carries a nonzero overtime-premium component.
	OvertimePenalty = 15.0

	// FreshDutyBonus is added when cycle duty hours sit below the configured
	// fresh threshold.
	FreshDutyBonus = 10.0

	// ShortStreakBonus is added when the candidate has fewer than
	// ShortStreakDays consecutive duty days.
	ShortStreakBonus = 5.0
	ShortStreakDays  = 3

	// Cost strategy: penalize 28-day utilization and expensive hourly rates.
	CostUtilizationWeight = 10.0
	CostHighRatePenalty   = 8.0

	// Fairness strategy: penalize recent call-outs, reward time since the
	// last one.
	FairnessCalloutWeight  = 4.0
	FairnessCalloutCap     = 20.0
	FairnessRecencyCap     = 10.0
	FairnessRecencyPerDays = 24.0

	// Seniority strategy: reward low recent utilization as a seniority proxy.
	SeniorityLowUtilizationWeight = 10.0
)

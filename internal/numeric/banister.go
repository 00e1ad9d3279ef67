package numeric

import "math"

// BanisterParams parameterizes the bi-exponential fitness-fatigue model.
// K1/Tau1 shape the slow positive fitness response, K2/Tau2 the fast
// negative fatigue response. Time constants are in days.
type BanisterParams struct {
	K1   float64
	Tau1 float64
	K2   float64
	Tau2 float64
}

// DefaultBanisterParams are tuned for rep-count charges: fatigue is twice as
// potent as fitness but decays six times faster, so a hard session hurts the
// next few days and helps the following weeks.
var DefaultBanisterParams = BanisterParams{
	K1:   0.05,
	Tau1: 30,
	K2:   0.10,
	Tau2: 5,
}

// TrainingImpulse is one training dose: the absolute day it was applied and
// its load (total reps performed).
type TrainingImpulse struct {
	Day    int
	Charge float64
}

// FitnessContribution returns the residual fitness effect of a training
// charge deltaDays after it was applied: charge·k·e^(−Δ/τ). Sessions at or
// after the evaluation day contribute nothing (causality).
func FitnessContribution(charge float64, deltaDays float64, k, tau float64) float64 {
	if deltaDays <= 0 || tau <= 0 {
		return 0
	}
	return charge * k * math.Exp(-deltaDays/tau)
}

// FatigueContribution returns the residual fatigue effect of a training
// charge deltaDays after it was applied. Same shape as fitness, different
// constants.
func FatigueContribution(charge float64, deltaDays float64, k, tau float64) float64 {
	if deltaDays <= 0 || tau <= 0 {
		return 0
	}
	return charge * k * math.Exp(-deltaDays/tau)
}

// BanisterPerformance predicts performance on targetDay as the baseline plus
// the summed fitness contributions minus the summed fatigue contributions of
// every past impulse. The result is floored at 1: a modeled performance can
// never drop below a single rep.
func BanisterPerformance(base float64, impulses []TrainingImpulse, targetDay int, params BanisterParams) float64 {
	perf := base
	for _, imp := range impulses {
		delta := float64(targetDay - imp.Day)
		perf += FitnessContribution(imp.Charge, delta, params.K1, params.Tau1)
		perf -= FatigueContribution(imp.Charge, delta, params.K2, params.Tau2)
	}
	return math.Max(1, perf)
}

// NetTrainingEffect returns the marginal net effect on the target day of a
// unit charge applied on trainingDay: fitness decay minus fatigue decay. A
// positive value means training that day still helps by test time.
func NetTrainingEffect(trainingDay, targetDay int, params BanisterParams) float64 {
	delta := float64(targetDay - trainingDay)
	return FitnessContribution(1, delta, params.K1, params.Tau1) -
		FatigueContribution(1, delta, params.K2, params.Tau2)
}

package model

import (
	"github.com/LiBuchauer/spatial-MP-discordances/ode"
)

// Derivative builds the ODE right-hand side for the forward model:
//
//	dp/dt = beta * m(t) * e(t) - delta * p
//
// where m is the mRNA driving signal and e the optional normalized
// translation-efficiency decay factor (nil means 1). Rates arrive already
// exponentiated; log-space sampling upstream guarantees they are positive,
// so the forcing term is non-negative for any admissible parameters.
func Derivative(beta float64, delta float64, mrna DrivingSignal, efficiency DrivingSignal) ode.DerivFunc {
	if efficiency == nil {
		return func(p float64, t float64) float64 {
			return beta*mrna.Eval(t) - delta*p
		}
	}
	return func(p float64, t float64) float64 {
		return beta*mrna.Eval(t)*efficiency.Eval(t) - delta*p
	}
}

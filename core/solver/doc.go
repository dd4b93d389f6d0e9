// Package solver builds multi-period loading plans.
//
// Every strategy implements Solver and returns a Result holding one loading
// vector per period, the first one pinned to the scenario's initial loading.
// Strategies are independent and interchangeable:
//   - Exhaustive: grid search around the previous period, first feasible
//     candidate wins; fails with ErrInfeasiblePeriod when the grid is empty.
//   - Greedy: nudges the most efficient node one unit at a time until the
//     demand band is reached; best effort, never fails on a stall.
//   - LP: lowers the declarative Model (pins, ramp rows, abs-value rows,
//     production rows, minimum total ramp) to a linear program solved by a
//     swappable Backend, gonum's simplex by default.
//
// Periods are solved strictly in order; period p only reads the finalized
// vector of period p-1.
package solver

// Package objective declares the running-cost/terminal-cost contract
// the solver minimizes (§1, §6). As with dynamics, no concrete cost
// functional is provided — cost shapes are an external collaborator.
package objective

// Package validator implements the physics validators: the quantum
// transition validator and the thermodynamic state tracker. Validators run
// every applicable check and report the complete violation set rather than
// stopping at the first failure, so callers get full diagnostics in one
// pass.
package validator

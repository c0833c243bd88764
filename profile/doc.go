// Package profile compiles per-vehicle-model CSV probability tables into
// cumulative distribution functions and maintains the merged base/overlay
// view the sampler draws from.
package profile

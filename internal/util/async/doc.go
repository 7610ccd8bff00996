// Package async runs independent tasks concurrently with a bound on how
// many are in flight.
package async

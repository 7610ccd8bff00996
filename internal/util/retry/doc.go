// Package retry provides exponential backoff retry logic for transient failures.
//
// The [Do] function retries an operation with configurable attempts, initial
// delay and maximum delay. It is used for SSH logins to freshly onboarded
// switches, which often refuse connections for a while after boot.
package retry

// Package discord implements the history source over the Discord REST API.
//
// The client authenticates with a bot token, pages through channel history
// oldest-first using the after-snowflake cursor, and throttles itself with a
// dual-strategy rate limiter: a proactive token bucket plus reactive header
// tracking, so bursts never trip the API's 429 responses in steady state.
package discord

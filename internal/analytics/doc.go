// Package analytics derives the figures shown on the school dashboard:
// grades from marks, attendance rates, fee and exam statuses, and the
// class-level reports built from them.
//
// Every function here is pure. Functions that depend on the current day
// take it as a parameter; none of them read the clock or keep state
// between calls.
package analytics

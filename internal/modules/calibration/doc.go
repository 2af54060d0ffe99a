// Package calibration implements the strategic onboarding calibration wizard: a scripted,
// branching conversation that captures a user's strategy preferences one question at a time.
//
// The pieces are layered leaves-first. Store accumulates answers, Sequencer maps the current
// step and an answer to the next step and prompts, EscapeHandler reroutes the next free-text
// answer when the user picks the custom option, and Transcript is the append-only log the client
// renders. Wizard composes them behind a single-flight guard.
package calibration

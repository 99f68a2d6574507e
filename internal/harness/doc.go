// Package harness runs scripted questionnaire scenarios.
//
// A scenario drives one run through a sequence of steps against an
// in-memory profile, with a manual scheduler standing in for wall-clock
// time, then checks assertions against the final state. Every scenario
// runs with a fixed run id and a fresh logical clock, so its trace is
// byte-for-byte reproducible and can be compared against a golden file.
//
// # Scenario Format
//
//	name: skin_stepped
//	description: "Single-choice answers auto-advance"
//	section: skin
//	layout: stepped          # or all_at_once; default stepped
//	only_required: true
//	run_id: test-run-skin    # default test-run-default
//	schema: custom.cue       # optional; default is the built-in schema
//	profile:                 # optional seed for the shared profile
//	  skin:
//	    skin_type: oily
//	steps:
//	  - op: answer
//	    question: skin.skin_type
//	    value: oily
//	  - op: wait
//	    duration: 300ms
//	  - op: toggle
//	    question: skin.primary_concerns
//	    item: acne
//	  - op: close
//	assertions:
//	  - type: active_index
//	    index: 1
//	  - type: profile
//	    section: skin
//	    field: skin_type
//	    value: oily
//
// # Steps
//
//   - answer: set a question's value (a string or a list of strings)
//   - clear: remove a question's value
//   - toggle: add or remove one item of a multi-choice answer
//   - advance, retreat: move through the sequence
//   - jump: activate a completed question by index
//   - wait: advance the manual scheduler, firing due timers
//   - pull: request another profile pull
//   - close: flush and end the run
//
// Every step is followed by draining the run's event queue.
//
// # Assertion Types
//
//   - active_index: the active question index
//   - answer: a question's local value, or its absence
//   - profile: a shared profile field, or its absence
//   - completion: the profile completion percentage
//   - merge_count: how many times the run merged into the profile
//   - trace_count: how many trace entries have an event and outcome
//   - state: a boolean flag of the final run state
package harness

// Package engine runs one questionnaire section for one user.
//
// A Session owns a run's ordered questions, its answer store, its
// navigation state and its profile synchronizer. Nothing else mutates them.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Presentation code calls Answer, Toggle, Advance, Retreat, JumpTo, Pull
// and Close from any goroutine. Each call only validates its arguments and
// enqueues an Event. Events are processed one at a time, in FIFO order,
// either by Run (a long-lived loop) or by Drain (synchronous, for scripts
// and tests). Timer callbacks (auto-advance, push debounce) never touch
// state; they enqueue an event carrying a generation number and the loop
// discards it if a newer timer has replaced it.
//
// Event Processing Flow:
//  1. New pulls prior answers from the shared profile, before any event
//     can be processed, so pull always precedes the first push.
//  2. answer/toggle normalize the value, store it, and schedule a
//     debounced push of the whole section.
//  3. In the stepped layout a single-choice answer on the active question
//     schedules an auto-advance.
//  4. advance/retreat/jump update navigation and cancel any pending
//     auto-advance.
//  5. close flushes the pending push and ends the run.
//
// After every event the loop publishes an immutable State that readers
// load without locking.
//
// Ordering:
// Every processed event is stamped by the logical Clock and reported to
// the TraceSink. Traces never contain wall-clock times.
package engine

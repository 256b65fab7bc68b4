// Package mode implements the editor's mode state machine: Normal,
// Insert, Select, ReadLine, Picker and Command states, each identified by
// a Tag and driven by HandleKeys returning a Pending/None/EnterMode/Quit/
// QuitAll/ExecuteMacro Outcome, per spec section 4.4.
//
// The Mode interface follows the teacher's input/mode.Mode shape
// (Enter/Exit/key-handling keyed by a tag) but returns the spec's closed
// Outcome enum instead of the teacher's open-ended UnmappedResult, since
// the spec's mode set is fixed rather than pluggable.
package mode

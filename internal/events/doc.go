// Package events provides the observer hook between the progress aggregator
// and notification collaborators.
//
// The progress service emits ProgressEvents (streak milestones, mastery
// thresholds) without knowing which handlers will process them; handlers
// register against the emitter at wiring time. Emission is fire-and-observe:
// handler failures are logged and reported but never affect the review path.
package events

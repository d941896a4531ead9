// Package synthesis converts translated cues into audio clips and verifies
// each clip against the text the voice engine reports having spoken. Clips
// whose echo drifted are recovered by boundary-guided slicing where possible
// and flagged as desynced where not.
package synthesis

// Package subtitles defines the Cue/CueSet data model that flows through the
// dubbing pipeline and the SRT read/write support around it.
package subtitles

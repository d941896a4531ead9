// Package media provides WAV decoding for synthesized clips and the ffmpeg
// muxing step that joins the master track with the original video.
package media

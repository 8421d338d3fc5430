package engine

// Package engine is the audio playback layer. Local files are decoded
// in-process (mp3, wav, flac, ogg) and remote URLs through an ffmpeg
// subprocess; everything is fed to the system device as 16-bit stereo PCM
// with position tracking and frame-based rate adjustment in between.

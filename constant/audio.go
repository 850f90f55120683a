package constant

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate    = 44100
	AudioChannels      = 2
	AudioBitDepth      = 16
	AudioBytesPerFrame = AudioChannels * (AudioBitDepth / 8) // 4 bytes
)

// Graph Rendering
const (
	// BlockSize is the render quantum in frames; feedback delays are never shorter than one block
	BlockSize = 128

	// MaxDelaySeconds bounds delay line allocation
	MaxDelaySeconds = 2.0

	// Epsilon replaces zero as an exponential ramp target
	Epsilon = 0.0001

	// NoiseBufferSeconds is the length of looped noise sources
	NoiseBufferSeconds = 2.0
)

// Output Backend Timing
const (
	// AudioBufferDuration determines backend latency and pipe writer tick rate
	AudioBufferDuration = 50 * time.Millisecond

	// SpeakerBufferDuration is the buffer handed to speaker.Init
	SpeakerBufferDuration = 100 * time.Millisecond
)

// Bus Defaults
const (
	DefaultMasterVolume  = 0.8
	DefaultMusicVolume   = 0.6
	DefaultAmbientVolume = 0.6
	DefaultSfxVolume     = 0.7

	// BusTimeConstant smooths master/music/ambient volume changes
	BusTimeConstant = 0.05
	// SfxTimeConstant smooths sfx volume changes
	SfxTimeConstant = 0.02
)

// Master Compressor
const (
	CompressorThreshold = -28.0 // dB
	CompressorKnee      = 24.0  // dB
	CompressorRatio     = 12.0
	CompressorAttack    = 0.003 // s
	CompressorRelease   = 0.24  // s
)

// Scene Transitions
const (
	// SceneFade is the ambient bus fade-out/fade-in duration on scene change
	SceneFade = 350 * time.Millisecond
)

// One-Shot Effects
const (
	// HoverCooldown drops repeated hover cues inside the window
	HoverCooldown = 140 * time.Millisecond

	// SfxVoiceTimeout disposes every sfx voice regardless of envelope state
	SfxVoiceTimeout = 500 * time.Millisecond
)

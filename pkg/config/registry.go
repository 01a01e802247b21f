package config

// Persistent state keys (Registry)
const (
	KeyUnits                  = "units"
	KeySimSource              = "sim_source"
	KeyDatalinkURL            = "datalink_url"
	KeyAllowTrim              = "allow_trim"
	KeyAllowControlInput      = "allow_control_input"
	KeySamplingWindow         = "sampling_window"
	KeyStabilizationThreshold = "stabilization_threshold"
	KeyMinSegment             = "min_segment"
	KeyAudioEnabled           = "audio_enabled"
	KeyAudioVolume            = "audio_volume"
	KeyMockLat                = "mock_start_lat"
	KeyMockLon                = "mock_start_lon"
	KeyMockAlt                = "mock_start_alt"
	KeyMockHeading            = "mock_start_heading"
	KeyOverlayShowSpeeds      = "overlay_show_speeds"
	KeyOverlayShowSegments    = "overlay_show_segments"
)

package simulation

// Config is the full editable simulation state. Every variant's fields are
// held at once; the active variant only decides which of them travel.
type Config struct {
	URL                     string `json:"url"`
	Delay                   int    `json:"delay"`
	Segments                int    `json:"segments"`
	DelayAfterSegments      int    `json:"delayAfterSegments"`
	StuckRecoveryTimeout    int    `json:"stuckRecoveryTimeout"`
	DropAfterPlaylists      int    `json:"dropAfterPlaylists"`
	SegmentFailureFrequency int    `json:"segmentFailureFrequency"`
	SegmentFailureCode      int    `json:"segmentFailureCode"`
	PlaylistStickThreshold  int    `json:"playlistStickThreshold"`
}

// DefaultConfig returns the state a console session starts with.
func DefaultConfig() Config {
	return Config{SegmentFailureCode: DefaultSegmentFailureCode}
}

// Value returns the current value of f as it would be encoded.
func (c Config) Value(f Field) (any, bool) {
	if f == FieldURL {
		return c.URL, true
	}
	p := c.intField(f)
	if p == nil {
		return nil, false
	}
	return *p, true
}

// Int returns the integer value of f; ok is false for non-integer fields.
func (c Config) Int(f Field) (int, bool) {
	p := c.intField(f)
	if p == nil {
		return 0, false
	}
	return *p, true
}

func (c *Config) intField(f Field) *int {
	switch f {
	case FieldDelay:
		return &c.Delay
	case FieldSegments:
		return &c.Segments
	case FieldDelayAfterSegments:
		return &c.DelayAfterSegments
	case FieldStuckRecoveryTimeout:
		return &c.StuckRecoveryTimeout
	case FieldDropAfterPlaylists:
		return &c.DropAfterPlaylists
	case FieldSegmentFailureFrequency:
		return &c.SegmentFailureFrequency
	case FieldSegmentFailureCode:
		return &c.SegmentFailureCode
	case FieldPlaylistStickThreshold:
		return &c.PlaylistStickThreshold
	default:
		return nil
	}
}

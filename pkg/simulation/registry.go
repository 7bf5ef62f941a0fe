package simulation

import "strings"

// sharedFields lists every field a SimulationConfig holds, in form order.
var sharedFields = []FieldSpec{
	{Name: FieldURL, Kind: KindString, Label: "URL", Placeholder: "URL"},
	{Name: FieldDelay, Kind: KindInt, Label: "Delay (seconds)", Placeholder: "Enter delay in seconds"},
	{Name: FieldSegments, Kind: KindInt, Label: "Segments", Placeholder: "Enter number of segments after delay should occur"},
	{Name: FieldDelayAfterSegments, Kind: KindInt, Label: "Delay After Segments", Placeholder: "Enter segments before the delay starts"},
	{Name: FieldPlaylistStickThreshold, Kind: KindInt, Label: "Playlist Stick Threshold", Placeholder: "Enter playlist stick threshold"},
	{Name: FieldStuckRecoveryTimeout, Kind: KindInt, Label: "Stuck Recovery Timeout", Placeholder: "Enter timeout for stuck playlist recovery"},
	{Name: FieldDropAfterPlaylists, Kind: KindInt, Label: "Drop After Playlists", Placeholder: "Enter number of playlists before dropping packets"},
	{Name: FieldSegmentFailureFrequency, Kind: KindInt, Label: "Segment Failure Frequency", Placeholder: "Enter frequency of segment failures"},
	{Name: FieldSegmentFailureCode, Kind: KindInt, Label: "Segment Failure Code", Placeholder: "Enter HTTP code for segment failure"},
}

// registry is ordered the way the console lists the variants.
var registry = []VariantSpec{
	{
		Name:   VariantDelayAudio,
		Title:  "Audio Delay Settings",
		Fields: []Field{FieldDelay, FieldSegments},
	},
	{
		Name:   VariantStuckPlaylist,
		Title:  "Stuck Playlist Simulation",
		Fields: []Field{FieldPlaylistStickThreshold, FieldStuckRecoveryTimeout},
	},
	{
		Name:   VariantDropPacket,
		Title:  "Packet Drop Simulation",
		Fields: []Field{FieldDropAfterPlaylists},
	},
	{
		Name:   VariantSegmentFailure,
		Title:  "Segment Failure Simulation",
		Fields: []Field{FieldSegmentFailureFrequency, FieldSegmentFailureCode},
	},
}

// Variants returns a copy of the registry in display order.
func Variants() []VariantSpec {
	out := make([]VariantSpec, len(registry))
	for i, spec := range registry {
		spec.Fields = append([]Field(nil), spec.Fields...)
		out[i] = spec
	}
	return out
}

// Lookup returns the registry row for v.
func Lookup(v Variant) (VariantSpec, error) {
	for _, spec := range registry {
		if spec.Name == v {
			spec.Fields = append([]Field(nil), spec.Fields...)
			return spec, nil
		}
	}
	return VariantSpec{}, &UnknownVariantError{Name: string(v)}
}

// RequiredFields returns the ordered fields variant v sends besides url and simulate.
func RequiredFields(v Variant) ([]Field, error) {
	spec, err := Lookup(v)
	if err != nil {
		return nil, err
	}
	return spec.Fields, nil
}

// ParseVariant validates a variant name coming from user or tool input.
func ParseVariant(name string) (Variant, error) {
	v := Variant(strings.TrimSpace(name))
	if _, err := Lookup(v); err != nil {
		return "", err
	}
	return v, nil
}

// LookupField returns the descriptor of a shared field.
func LookupField(f Field) (FieldSpec, bool) {
	for _, spec := range sharedFields {
		if spec.Name == f {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// SharedFields returns every field of the shared set in form order.
func SharedFields() []FieldSpec {
	return append([]FieldSpec(nil), sharedFields...)
}

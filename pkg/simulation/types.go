package simulation

// Variant names one fault-injection mode the streaming proxy can apply.
type Variant string

const (
	VariantDelayAudio     Variant = "delayAudio"
	VariantStuckPlaylist  Variant = "stuckPlaylist"
	VariantDropPacket     Variant = "dropPacket"
	VariantSegmentFailure Variant = "segmentFailure"
)

// Field is the wire name of one entry of the shared configuration set.
type Field string

const (
	FieldURL                     Field = "url"
	FieldDelay                   Field = "delay"
	FieldSegments                Field = "segments"
	FieldDelayAfterSegments      Field = "delayAfterSegments"
	FieldStuckRecoveryTimeout    Field = "stuckRecoveryTimeout"
	FieldDropAfterPlaylists      Field = "dropAfterPlaylists"
	FieldSegmentFailureFrequency Field = "segmentFailureFrequency"
	FieldSegmentFailureCode      Field = "segmentFailureCode"
	FieldPlaylistStickThreshold  Field = "playlistStickThreshold"
)

// FieldKind decides how raw form input is coerced.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindBool
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// FieldSpec describes a field for rendering and coercion.
type FieldSpec struct {
	Name        Field     `json:"name"`
	Kind        FieldKind `json:"-"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder"`
}

// VariantSpec is one registry row.
type VariantSpec struct {
	Name   Variant `json:"name"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// DefaultSegmentFailureCode is the HTTP status the proxy answers failed segments with.
const DefaultSegmentFailureCode = 404

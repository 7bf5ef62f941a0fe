package simulation

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestBuilder_PayloadKeysPerVariant(t *testing.T) {
	tests := []struct {
		variant Variant
		want    []string
	}{
		{VariantDelayAudio, []string{"url", "simulate", "delay", "segments"}},
		{VariantStuckPlaylist, []string{"url", "simulate", "playlistStickThreshold", "stuckRecoveryTimeout"}},
		{VariantDropPacket, []string{"url", "simulate", "dropAfterPlaylists"}},
		{VariantSegmentFailure, []string{"url", "simulate", "segmentFailureFrequency", "segmentFailureCode"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			b := NewBuilder()
			// Populate every field so extraneous keys would show up.
			for _, spec := range SharedFields() {
				raw := "7"
				if spec.Name == FieldURL {
					raw = "http://src.test/live.m3u8"
				}
				if spec.Name == FieldSegmentFailureCode {
					raw = "503"
				}
				if err := b.SetField(string(spec.Name), raw); err != nil {
					t.Fatalf("SetField(%s) error = %v", spec.Name, err)
				}
			}
			if err := b.SelectVariant(tt.variant); err != nil {
				t.Fatalf("SelectVariant() error = %v", err)
			}

			p, err := b.BuildPayload()
			if err != nil {
				t.Fatalf("BuildPayload() error = %v", err)
			}
			if got := p.Keys(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keys() = %v, want %v", got, tt.want)
			}

			data, err := json.Marshal(p)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			var decoded map[string]any
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if len(decoded) != len(tt.want) {
				t.Errorf("encoded payload has %d keys, want %d: %s", len(decoded), len(tt.want), data)
			}
			for _, k := range tt.want {
				if _, ok := decoded[k]; !ok {
					t.Errorf("encoded payload missing %q: %s", k, data)
				}
			}
		})
	}
}

func TestBuilder_SwitchingVariantKeepsFields(t *testing.T) {
	b := NewBuilder()
	if err := b.SetField("delay", "5"); err != nil {
		t.Fatalf("SetField() error = %v", err)
	}
	if err := b.SelectVariant(VariantDropPacket); err != nil {
		t.Fatal(err)
	}
	if err := b.SelectVariant(VariantDelayAudio); err != nil {
		t.Fatal(err)
	}

	p, err := b.BuildPayload()
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}
	if got, ok := p.Get(FieldDelay); !ok || got != 5 {
		t.Errorf("delay = %d (present %v), want 5", got, ok)
	}
}

func TestBuilder_NoVariantSelected(t *testing.T) {
	b := NewBuilder()
	_ = b.SetField("url", "http://src.test/live.m3u8")

	_, err := b.BuildPayload()
	if !errors.Is(err, ErrNoVariantSelected) {
		t.Fatalf("BuildPayload() error = %v, want ErrNoVariantSelected", err)
	}
}

func TestBuilder_ValuesReadAtBuildTime(t *testing.T) {
	b := NewBuilder()
	if err := b.SelectVariant(VariantDropPacket); err != nil {
		t.Fatal(err)
	}
	if err := b.SetField("dropAfterPlaylists", "9"); err != nil {
		t.Fatal(err)
	}

	p, err := b.BuildPayload()
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := p.Get(FieldDropAfterPlaylists); got != 9 {
		t.Errorf("dropAfterPlaylists = %d, want 9", got)
	}
}

func TestBuilder_SegmentFailureScenario(t *testing.T) {
	b := NewBuilder()
	if err := b.SetField("url", "http://src.test/live.m3u8"); err != nil {
		t.Fatal(err)
	}
	if err := b.SelectVariant(VariantSegmentFailure); err != nil {
		t.Fatal(err)
	}
	if err := b.SetField("segmentFailureFrequency", "3"); err != nil {
		t.Fatal(err)
	}

	p, err := b.BuildPayload()
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"url":"http://src.test/live.m3u8","simulate":"segmentFailure","segmentFailureFrequency":3,"segmentFailureCode":404}`
	if string(data) != want {
		t.Errorf("payload = %s, want %s", data, want)
	}
}

func TestBuilder_SetFieldRejections(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		raw     string
		wantErr any
	}{
		{"non numeric", "delay", "abc", &InvalidFieldValueError{}},
		{"empty", "segments", "", &InvalidFieldValueError{}},
		{"negative", "dropAfterPlaylists", "-1", &InvalidFieldValueError{}},
		{"float", "delay", "1.5", &InvalidFieldValueError{}},
		{"status out of range", "segmentFailureCode", "42", &InvalidFieldValueError{}},
		{"unknown field", "bitrate", "1", &UnknownFieldError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			before := b.Config()

			err := b.SetField(tt.field, tt.raw)
			if err == nil {
				t.Fatalf("SetField(%q, %q) expected error", tt.field, tt.raw)
			}
			switch tt.wantErr.(type) {
			case *InvalidFieldValueError:
				var target *InvalidFieldValueError
				if !errors.As(err, &target) {
					t.Errorf("error = %T, want *InvalidFieldValueError", err)
				}
			case *UnknownFieldError:
				var target *UnknownFieldError
				if !errors.As(err, &target) {
					t.Errorf("error = %T, want *UnknownFieldError", err)
				}
			}
			if after := b.Config(); after != before {
				t.Errorf("config changed after rejected input: %+v -> %+v", before, after)
			}
		})
	}
}

func TestBuilder_SetFieldTrimsIntegers(t *testing.T) {
	b := NewBuilder()
	if err := b.SetField("segments", " 12 "); err != nil {
		t.Fatalf("SetField() error = %v", err)
	}
	if got := b.Config().Segments; got != 12 {
		t.Errorf("Segments = %d, want 12", got)
	}
}

func TestBuilder_SetCheckedRejectsNonBoolean(t *testing.T) {
	b := NewBuilder()
	var target *InvalidFieldValueError
	if err := b.SetChecked("delay", true); !errors.As(err, &target) {
		t.Errorf("SetChecked(delay) error = %v, want *InvalidFieldValueError", err)
	}
	var unknown *UnknownFieldError
	if err := b.SetChecked("loop", true); !errors.As(err, &unknown) {
		t.Errorf("SetChecked(loop) error = %v, want *UnknownFieldError", err)
	}
}

func TestBuilder_SelectUnknownVariant(t *testing.T) {
	b := NewBuilder()
	if err := b.SelectVariant(VariantDropPacket); err != nil {
		t.Fatal(err)
	}

	var target *UnknownVariantError
	if err := b.SelectVariant("audio"); !errors.As(err, &target) {
		t.Fatalf("SelectVariant(audio) error = %v, want *UnknownVariantError", err)
	}
	if got := b.Variant(); got != VariantDropPacket {
		t.Errorf("Variant() = %q after rejected selection, want %q", got, VariantDropPacket)
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.SegmentFailureCode != 404 {
		t.Errorf("SegmentFailureCode = %d, want 404", c.SegmentFailureCode)
	}
	if c.URL != "" || c.Delay != 0 || c.PlaylistStickThreshold != 0 {
		t.Errorf("unexpected non-zero defaults: %+v", c)
	}
}

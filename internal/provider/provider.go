// Package provider describes the supported speech-synthesis providers and
// normalizes their heterogeneous voice listings into one catalog shape.
package provider

import "github.com/daikw/voxflow/internal/fault"

// ID identifies a supported provider.
type ID string

const (
	ElevenLabs ID = "elevenlabs"
	EdgeTTS    ID = "edge_tts"
	LemonFox   ID = "lemonfox"
)

// Descriptor is the immutable description of a provider.
type Descriptor struct {
	ID                 ID
	DisplayName        string
	RequiresCredential bool
	DefaultVoice       string
}

// Declaration order is presentation order.
var descriptors = []Descriptor{
	{ID: ElevenLabs, DisplayName: "ElevenLabs", RequiresCredential: true, DefaultVoice: "21m00Tcm4TlvDq8ikWAM"},
	{ID: EdgeTTS, DisplayName: "Microsoft Edge TTS (Free)", RequiresCredential: false, DefaultVoice: "en-US-ChristopherNeural"},
	{ID: LemonFox, DisplayName: "LemonFox.ai", RequiresCredential: true, DefaultVoice: "charles"},
}

// Describe looks up the descriptor for id.
func Describe(id ID) (Descriptor, error) {
	for _, d := range descriptors {
		if d.ID == id {
			return d, nil
		}
	}
	return Descriptor{}, fault.Newf(fault.KindUnknownProvider, "describe", "unsupported provider: %s", id)
}

// All returns the descriptors in declaration order.
func All() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Known reports whether id is a registered provider.
func Known(id ID) bool {
	_, err := Describe(id)
	return err == nil
}

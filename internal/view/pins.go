// Pin variants attachable to grid cells. Simple variants compare by value;
// opaque pins compare by an identity token minted at creation, so two
// opaque pins are "the same pin" only if they came from the same NewOpaque
// call, regardless of payload content.
package view

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/gridscout/internal/world"
)

// Kind discriminates pin variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNumber
	KindText
	KindTerrain
	KindContent
	KindCity
	KindBank
	KindMarket
	KindOpaque
)

// KindName returns a human-readable kind name.
func KindName(k Kind) string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindTerrain:
		return "terrain"
	case KindContent:
		return "content"
	case KindCity:
		return "city"
	case KindBank:
		return "bank"
	case KindMarket:
		return "market"
	case KindOpaque:
		return "opaque"
	}
	return "invalid"
}

// pinKey is the comparable identity of a pin. It doubles as the reverse
// index map key: two pins are the same pin iff their keys are equal.
type pinKey struct {
	kind    Kind
	num     int // Number value, or Bank balance
	text    string
	terrain world.Terrain
	content world.Content
	token   uuid.UUID // Opaque identity; zero for other kinds
}

// Pin is one annotation on a grid cell. The zero Pin is invalid.
type Pin struct {
	key     pinKey
	payload any // Opaque payload; nil for simple variants
}

// Number returns a pin carrying an integer value.
func Number(v int) Pin {
	return Pin{key: pinKey{kind: KindNumber, num: v}}
}

// Text returns a pin carrying a string value.
func Text(s string) Pin {
	return Pin{key: pinKey{kind: KindText, text: s}}
}

// TerrainMarker returns a pin marking a terrain type.
func TerrainMarker(t world.Terrain) Pin {
	return Pin{key: pinKey{kind: KindTerrain, terrain: t}}
}

// ContentMarker returns a pin marking a content type.
func ContentMarker(c world.Content) Pin {
	return Pin{key: pinKey{kind: KindContent, content: c}}
}

// City returns the city marker pin.
func City() Pin {
	return Pin{key: pinKey{kind: KindCity}}
}

// Bank returns a pin recording a bank balance.
func Bank(balance int) Pin {
	return Pin{key: pinKey{kind: KindBank, num: balance}}
}

// Market returns the market marker pin.
func Market() Pin {
	return Pin{key: pinKey{kind: KindMarket}}
}

// NewOpaque wraps an arbitrary payload in a pin. Each call mints a fresh
// identity token: two opaque pins with identical payload content are still
// distinct pins unless one was copied from the other.
func NewOpaque(payload any) Pin {
	return Pin{
		key:     pinKey{kind: KindOpaque, token: uuid.New()},
		payload: payload,
	}
}

// RestoreOpaque rebuilds an opaque pin from a previously issued token,
// preserving its identity across persistence round-trips.
func RestoreOpaque(token uuid.UUID, payload any) Pin {
	return Pin{
		key:     pinKey{kind: KindOpaque, token: token},
		payload: payload,
	}
}

// Kind returns the pin's variant.
func (p Pin) Kind() Kind {
	return p.key.kind
}

// Valid reports whether the pin is a constructed variant (not the zero Pin).
func (p Pin) Valid() bool {
	return p.key.kind != KindInvalid
}

// Equal reports whether two pins are the same pin.
func (p Pin) Equal(q Pin) bool {
	return p.key == q.key
}

// NumberValue returns the integer value of a Number pin.
func (p Pin) NumberValue() (int, bool) {
	if p.key.kind != KindNumber {
		return 0, false
	}
	return p.key.num, true
}

// TextValue returns the string value of a Text pin.
func (p Pin) TextValue() (string, bool) {
	if p.key.kind != KindText {
		return "", false
	}
	return p.key.text, true
}

// TerrainValue returns the terrain marked by a Terrain pin.
func (p Pin) TerrainValue() (world.Terrain, bool) {
	if p.key.kind != KindTerrain {
		return 0, false
	}
	return p.key.terrain, true
}

// ContentValue returns the content marked by a Content pin.
func (p Pin) ContentValue() (world.Content, bool) {
	if p.key.kind != KindContent {
		return 0, false
	}
	return p.key.content, true
}

// BankBalance returns the balance recorded by a Bank pin.
func (p Pin) BankBalance() (int, bool) {
	if p.key.kind != KindBank {
		return 0, false
	}
	return p.key.num, true
}

// Payload returns the payload of an opaque pin.
func (p Pin) Payload() (any, bool) {
	if p.key.kind != KindOpaque {
		return nil, false
	}
	return p.payload, true
}

// Token returns the identity token of an opaque pin.
func (p Pin) Token() (uuid.UUID, bool) {
	if p.key.kind != KindOpaque {
		return uuid.UUID{}, false
	}
	return p.key.token, true
}

// String returns a summary of the pin.
func (p Pin) String() string {
	switch p.key.kind {
	case KindNumber:
		return fmt.Sprintf("number(%d)", p.key.num)
	case KindText:
		return fmt.Sprintf("text(%q)", p.key.text)
	case KindTerrain:
		return fmt.Sprintf("terrain(%s)", world.TerrainName(p.key.terrain))
	case KindContent:
		return fmt.Sprintf("content(%s)", world.ContentName(p.key.content))
	case KindCity:
		return "city"
	case KindBank:
		return fmt.Sprintf("bank(%d)", p.key.num)
	case KindMarket:
		return "market"
	case KindOpaque:
		return fmt.Sprintf("opaque(%s)", p.key.token)
	}
	return "invalid"
}

package model

// Mode is how a device entered its family.
type Mode string

const (
	ModeJoin   Mode = "join"
	ModeCreate Mode = "create"
)

// Valid reports whether m is join or create.
func (m Mode) Valid() bool {
	return m == ModeJoin || m == ModeCreate
}

// Session is the single active identity on this device.
//
// IsAdmin is true only when this device created the family.
type Session struct {
	Mode       Mode   `json:"mode"`
	FamilyKey  string `json:"familyKey"`
	FamilyName string `json:"familyName"`
	UserName   string `json:"userName"`
	UserAvatar string `json:"userAvatar"`
	IsAdmin    bool   `json:"isAdmin"`
}

// JoinedFamilyName is the display name of a family joined by key. Joining
// does not look the family up, so the key is all there is to show.
func JoinedFamilyName(familyKey string) string {
	return "Family of " + familyKey
}

// Onboarding is the completed onboarding form: either CreateFamily or
// JoinFamily. It is turned into a Session as soon as onboarding finishes.
type Onboarding interface {
	Mode() Mode
	onboarding()
}

// CreateFamily starts a new family. The family key is generated, not typed.
type CreateFamily struct {
	FamilyName string `json:"familyName"`
	UserName   string `json:"userName"`
	Avatar     string `json:"avatar"`
}

// JoinFamily connects to an existing family by its key.
type JoinFamily struct {
	FamilyKey string `json:"familyKey"`
	UserName  string `json:"userName"`
	Avatar    string `json:"avatar"`
}

func (CreateFamily) Mode() Mode { return ModeCreate }
func (JoinFamily) Mode() Mode   { return ModeJoin }

func (CreateFamily) onboarding() {}
func (JoinFamily) onboarding()   {}

// SystemContributor is the author of the dishes every family starts with.
const SystemContributor = "System"

// FamilyMember is one entry of the family roster.
type FamilyMember struct {
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	IsAdmin       bool   `json:"isAdmin"`
	IsCurrentUser bool   `json:"isCurrentUser"`
}

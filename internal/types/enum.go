package types

// DiscriminatorKind enumerates the tag decoding strategies.
type DiscriminatorKind uint8

const (
	// DiscInvalid means no valid tag exists; the enum is uninhabited.
	DiscInvalid DiscriminatorKind = iota
	// DiscKnown means the discriminant is fixed and no tag is stored.
	DiscKnown
	// DiscBranch reads an integer at Offset and dispatches on its value.
	DiscBranch
)

func (k DiscriminatorKind) String() string {
	switch k {
	case DiscInvalid:
		return "invalid"
	case DiscKnown:
		return "known"
	case DiscBranch:
		return "branch"
	default:
		return "unknown"
	}
}

// Discriminator decodes the discriminant of an enum value from its bytes.
//
//	DiscKnown:  Value
//	DiscBranch: Offset, ValueType, Fallback, Children
type Discriminator struct {
	Kind      DiscriminatorKind
	Value     int64
	Offset    Size
	ValueType IntType
	Fallback  *Discriminator
	Children  []DiscriminatorBranch
}

// DiscriminatorBranch maps the half-open value range [Start, End) to a nested discriminator.
type DiscriminatorBranch struct {
	Start int64
	End   int64
	Disc  Discriminator
}

// Tag is an integer written at a fixed offset when a variant is constructed.
type Tag struct {
	Type  IntType
	Value int64
}

// Variant pairs the payload type of an enum variant with its tagger.
type Variant struct {
	Type   Type
	Tagger map[Size]Tag
}

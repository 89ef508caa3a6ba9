package types

const (
	// DefaultCensusDepth is the default number of levels of the census merkle
	// tree. It bounds the census capacity to 2^15 = 32768 voters.
	DefaultCensusDepth = 15
	// MaxCensusDepth is the maximum accepted census tree depth. The census
	// tree is dense, so memory grows with 2^depth and 20 levels already
	// allow more than a million voters.
	MaxCensusDepth = 20
	// VoterKeyMaxBytes is the number of voter id bytes used by the field
	// encoding. 31 bytes always fit in the BN254 scalar field.
	VoterKeyMaxBytes = 31
	// CensusSeedSize is the size in bytes of the census shuffle seed.
	CensusSeedSize = 32
	// FieldSize is the size in bytes of a serialized field element.
	FieldSize = 32
	// NullifierTreeMaxLevels is the number of levels of the nullifier
	// registry tree, enough for full 32-byte nullifier keys.
	NullifierTreeMaxLevels = 256
)

package classfile

// AccessFlags is the bitset shared by classes, fields and methods (spec §6).
type AccessFlags uint16

const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020 // == AccSynchronized on methods
	AccSynchronized AccessFlags = 0x0020
	AccVolatile     AccessFlags = 0x0040 // == AccBridge on methods
	AccBridge       AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080 // == AccVarargs on methods
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000 // == AccMandated on parameters
	AccMandated     AccessFlags = 0x8000
)

// Has reports whether every bit in mask is set.
func (f AccessFlags) Has(mask AccessFlags) bool { return f&mask == mask }

package tarcodec

const (
	blockSize  int64 = 512
	footerSize       = blockSize * 2

	nameSize  = 100
	ownerSize = 32

	// Header field offsets (GNU layout).
	nameOff     = 0
	modeOff     = 100
	uidOff      = 108
	gidOff      = 116
	sizeOff     = 124
	mtimeOff    = 136
	chksumOff   = 148
	chksumEnd   = 156
	typeflagOff = 156
	linkOff     = 157
	magicOff    = 257
	versionOff  = 263
	unameOff    = 265
	gnameOff    = 297

	modeLen  = 8
	idLen    = 8
	sizeLen  = 12
	mtimeLen = 12

	magicGNU   = "ustar "
	versionGNU = " \x00"

	longLinkName = "././@LongLink"

	// maxLongNameSize bounds the payload of L and K records.
	maxLongNameSize = 1 << 20
)

const (
	typeReg      byte = '0'
	typeRegA     byte = '\x00'
	typeLink     byte = '1'
	typeSymlink  byte = '2'
	typeDir      byte = '5'
	typeCont     byte = '7'
	typeLongName byte = 'L'
	typeLongLink byte = 'K'
)

type block [blockSize]byte

var zeroBlock block

func (b *block) isZero() bool {
	return *b == zeroBlock
}

// paddingSize returns the number of NUL bytes that follow size payload bytes.
func paddingSize(size int64) int64 {
	return -size & (blockSize - 1)
}

func paddedSize(size int64) int64 {
	return size + paddingSize(size)
}

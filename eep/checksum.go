package eep

// Checksum computes the 16-bit check value stored at the end of each atom.
// It is applied to type‖count‖dlen‖data exactly as they appear in the image.
type Checksum func(data []byte) uint16

// CRC-16 algorithm constants.
const (
	// CRC16Polynomial is the CCITT polynomial used MSB-first (0x1021)
	CRC16Polynomial = 0x1021

	// CRC16ReflectedPolynomial is the 0x8005 polynomial bit-reversed, used LSB-first
	CRC16ReflectedPolynomial = 0xA001

	// CRC16InitialValue is the register value before the first byte
	CRC16InitialValue = 0x0000

	// CRC16HighBitMask is the high bit mask for MSB-first processing
	CRC16HighBitMask = 0x8000

	// BitsPerByte is the number of bits per byte
	BitsPerByte = 8
)

// CRC16 computes CRC-16/XMODEM: polynomial 0x1021, initial value 0x0000,
// MSB first, no reflection, no final XOR. This is the default atom checksum.
func CRC16(data []byte) uint16 {
	crc := uint16(CRC16InitialValue)

	for _, b := range data {
		crc ^= uint16(b) << BitsPerByte
		for i := 0; i < BitsPerByte; i++ {
			if crc&CRC16HighBitMask != 0 {
				crc = (crc << 1) ^ CRC16Polynomial
			} else {
				crc = crc << 1
			}
		}
	}

	return crc
}

// CRC16ARC computes CRC-16/ARC: polynomial 0x8005 reflected, initial value 0x0000,
// LSB first, no final XOR. Some third-party image writers use it.
func CRC16ARC(data []byte) uint16 {
	crc := uint16(CRC16InitialValue)

	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < BitsPerByte; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ CRC16ReflectedPolynomial
			} else {
				crc = crc >> 1
			}
		}
	}

	return crc
}

package eep

import "testing"

func TestCRC16(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0x0000,
		},
		{
			name:     "single byte zero",
			data:     []byte{0x00},
			expected: 0x0000,
		},
		{
			name:     "check string",
			data:     []byte("123456789"),
			expected: 0x31C3, // CRC-16/XMODEM check value
		},
		{
			name:     "test data",
			data:     []byte{0x01, 0x02, 0x03, 0x04},
			expected: 0x0D03,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CRC16(tt.data)
			if result != tt.expected {
				t.Errorf("CRC16() = 0x%04X, want 0x%04X", result, tt.expected)
			}
		})
	}
}

func TestCRC16ARC(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0x0000,
		},
		{
			name:     "check string",
			data:     []byte("123456789"),
			expected: 0xBB3D, // CRC-16/ARC check value
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CRC16ARC(tt.data)
			if result != tt.expected {
				t.Errorf("CRC16ARC() = 0x%04X, want 0x%04X", result, tt.expected)
			}
		})
	}
}

func TestCRC16DetectsSingleBitFlips(t *testing.T) {
	data := []byte("R-Pi atom payload under test")
	want := CRC16(data)

	for i := range data {
		for bit := 0; bit < BitsPerByte; bit++ {
			flipped := append([]byte(nil), data...)
			flipped[i] ^= 1 << bit
			if CRC16(flipped) == want {
				t.Fatalf("bit %d of byte %d flipped without changing the CRC", bit, i)
			}
		}
	}
}

func BenchmarkCRC16(b *testing.B) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CRC16(data)
	}
}

func BenchmarkCRC16ARC(b *testing.B) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CRC16ARC(data)
	}
}

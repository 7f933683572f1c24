package types

import (
	"fmt"
)

// Glyph - символ сетки вместе с цветом в одном uint32.
// Один формат для веб-снимка (Symbol + HexColor) и терминала (Rune + RGB).
//
//	[0:8]  - ASCII символ
//	[8:32] - цвет 0xRRGGBB
type Glyph uint32

const (
	bitsChar  = 8
	bitsColor = 24

	shiftColor = bitsChar

	maskChar  = (1 << bitsChar) - 1  // 0xFF
	maskColor = (1 << bitsColor) - 1 // 0xFFFFFF
)

// MakeGlyph упаковывает цвет 0xRRGGBB (старший байт отбрасывается) и символ.
//
//	MakeGlyph(0xFFD54F, 'H') == 0xFFD54F48
func MakeGlyph(colorRGB uint32, char byte) Glyph {
	return Glyph((colorRGB&maskColor)<<shiftColor | (uint32(char) & maskChar))
}

func (g Glyph) Color() uint32 {
	return uint32(g>>shiftColor) & maskColor
}

func (g Glyph) Char() byte {
	return byte(g & maskChar)
}

// Rune - символ для tcell.SetContent
func (g Glyph) Rune() rune {
	return rune(g.Char())
}

// Symbol - символ строкой для JSON-снимка
func (g Glyph) Symbol() string {
	return string(g.Rune())
}

// RGB раскладывает цвет по каналам
func (g Glyph) RGB() (r, gr, b uint8) {
	c := g.Color()
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// HexColor - цвет для веб-клиента, например "#FFD54F"
func (g Glyph) HexColor() string {
	return fmt.Sprintf("#%06X", g.Color())
}

// String: Glyph{'H' #FFD54F}. Непечатаемые символы выводятся как \xNN.
func (g Glyph) String() string {
	char := g.Char()
	charStr := string([]byte{char})
	if char < 32 || char > 126 {
		charStr = fmt.Sprintf("\\x%02X", char)
	}
	return fmt.Sprintf("Glyph{'%s' %s}", charStr, g.HexColor())
}

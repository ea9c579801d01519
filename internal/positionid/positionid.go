// Package positionid implements compact position IDs for Othello boards.
//
// A position ID packs the black and white discs as two 64-bit bitboards
// (bit 0 = a1, bit 63 = h8) plus the side to move into 17 bytes, written
// as a 23-character unpadded base64 string. IDs are URL-safe so they can
// travel in query strings.
package positionid

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/yourusername/othelloengine/internal/board"
)

// PositionIDLength is the length of a position ID string
const PositionIDLength = 23

const keyBytes = 17

var encoding = base64.RawURLEncoding

// ErrInvalidPositionID is returned when a position ID cannot be decoded
var ErrInvalidPositionID = errors.New("positionid: invalid position ID")

// Key is the binary form of a position
type Key struct {
	Black uint64
	White uint64
	Side  board.Cell
}

// MakeKey packs a board and side to move
func MakeKey(b board.Board, side board.Cell) Key {
	k := Key{Side: side}
	for sq := 0; sq < board.NumSquares; sq++ {
		switch b[sq/board.Size][sq%board.Size] {
		case board.Black:
			k.Black |= 1 << uint(sq)
		case board.White:
			k.White |= 1 << uint(sq)
		}
	}
	return k
}

// Board unpacks the key's discs
func (k Key) Board() board.Board {
	var b board.Board
	for sq := 0; sq < board.NumSquares; sq++ {
		switch {
		case k.Black&(1<<uint(sq)) != 0:
			b[sq/board.Size][sq%board.Size] = board.Black
		case k.White&(1<<uint(sq)) != 0:
			b[sq/board.Size][sq%board.Size] = board.White
		}
	}
	return b
}

// String returns the position ID of the key
func (k Key) String() string {
	var buf [keyBytes]byte
	binary.BigEndian.PutUint64(buf[0:8], k.Black)
	binary.BigEndian.PutUint64(buf[8:16], k.White)
	buf[16] = byte(k.Side)
	return encoding.EncodeToString(buf[:])
}

// PositionID returns the ID of b with side to move
func PositionID(b board.Board, side board.Cell) string {
	return MakeKey(b, side).String()
}

// Decode parses a position ID. It rejects IDs with overlapping discs or
// a side other than black or white.
func Decode(posID string) (Key, error) {
	if len(posID) != PositionIDLength {
		return Key{}, errors.Wrapf(ErrInvalidPositionID, "length %d, want %d", len(posID), PositionIDLength)
	}
	buf, err := encoding.DecodeString(posID)
	if err != nil {
		return Key{}, errors.Wrap(ErrInvalidPositionID, err.Error())
	}

	k := Key{
		Black: binary.BigEndian.Uint64(buf[0:8]),
		White: binary.BigEndian.Uint64(buf[8:16]),
		Side:  board.Cell(buf[16]),
	}
	if k.Black&k.White != 0 {
		return Key{}, errors.Wrap(ErrInvalidPositionID, "square holds both colors")
	}
	if k.Side != board.Black && k.Side != board.White {
		return Key{}, errors.Wrapf(ErrInvalidPositionID, "bad side %d", buf[16])
	}
	return k, nil
}

// BoardFromPositionID decodes a position ID to a board and side to move
func BoardFromPositionID(posID string) (board.Board, board.Cell, error) {
	k, err := Decode(posID)
	if err != nil {
		return board.Board{}, board.Empty, err
	}
	return k.Board(), k.Side, nil
}

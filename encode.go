package pgsession

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgio"
	"github.com/shopspring/decimal"
)

// TextRowEncoder encodes rows in the COPY text format: tab-separated fields, newline
// terminated, NULL spelled \N.
type TextRowEncoder struct{}

func (TextRowEncoder) AppendRow(buf []byte, tbl Table, row int) ([]byte, error) {
	for i, col := range tbl {
		if i > 0 {
			buf = append(buf, '\t')
		}
		var err error
		buf, err = appendTextValue(buf, col.Values[row])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
	}
	return append(buf, '\n'), nil
}

func appendTextValue(buf []byte, v interface{}) ([]byte, error) {
	switch v := v.(type) {
	case nil:
		return append(buf, `\N`...), nil
	case bool:
		if v {
			return append(buf, 't'), nil
		}
		return append(buf, 'f'), nil
	case int:
		return strconv.AppendInt(buf, int64(v), 10), nil
	case int8:
		return strconv.AppendInt(buf, int64(v), 10), nil
	case int16:
		return strconv.AppendInt(buf, int64(v), 10), nil
	case int32:
		return strconv.AppendInt(buf, int64(v), 10), nil
	case int64:
		return strconv.AppendInt(buf, v, 10), nil
	case uint:
		return strconv.AppendUint(buf, uint64(v), 10), nil
	case uint8:
		return strconv.AppendUint(buf, uint64(v), 10), nil
	case uint16:
		return strconv.AppendUint(buf, uint64(v), 10), nil
	case uint32:
		return strconv.AppendUint(buf, uint64(v), 10), nil
	case uint64:
		return strconv.AppendUint(buf, v, 10), nil
	case float32:
		return strconv.AppendFloat(buf, float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.AppendFloat(buf, v, 'g', -1, 64), nil
	case string:
		return appendCopyText(buf, v), nil
	case []byte:
		buf = append(buf, '\\', '\\', 'x')
		return append(buf, hex.EncodeToString(v)...), nil
	case time.Time:
		return v.AppendFormat(buf, "2006-01-02 15:04:05.999999Z07:00"), nil
	case uuid.UUID:
		return append(buf, v.String()...), nil
	case decimal.Decimal:
		return append(buf, v.String()...), nil
	default:
		return nil, fmt.Errorf("cannot encode %T in COPY text format", v)
	}
}

// appendCopyText escapes s per the COPY text format rules: backslash, newline, carriage
// return, and tab are the only characters that need escaping.
func appendCopyText(buf []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			buf = append(buf, c)
		}
	}
	return buf
}

// BinaryRowEncoder encodes rows in the COPY binary format. The COPY statement must request
// it (WITH (FORMAT binary)) and the Go value types must match the destination column types:
// int8/int16/uint8 map to int2, uint16/int32 to int4, int/int64 to int8, float32/float64 to
// float4/float8, string to text types, []byte to bytea, time.Time to timestamptz, uuid.UUID
// to uuid.
type BinaryRowEncoder struct{}

func (BinaryRowEncoder) AppendHeader(buf []byte) []byte {
	buf = append(buf, "PGCOPY\n\377\r\n\000"...)
	buf = pgio.AppendInt32(buf, 0) // flags
	buf = pgio.AppendInt32(buf, 0) // header extension length
	return buf
}

func (BinaryRowEncoder) AppendTrailer(buf []byte) []byte {
	return pgio.AppendInt16(buf, -1)
}

func (BinaryRowEncoder) AppendRow(buf []byte, tbl Table, row int) ([]byte, error) {
	buf = pgio.AppendInt16(buf, int16(len(tbl)))
	for _, col := range tbl {
		var err error
		buf, err = appendBinaryValue(buf, col.Values[row])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
	}
	return buf, nil
}

// microseconds between the Unix epoch and 2000-01-01, the PostgreSQL timestamp epoch.
const microsecFromUnixEpochToY2K = 946684800 * 1000000

func appendBinaryValue(buf []byte, v interface{}) ([]byte, error) {
	switch v := v.(type) {
	case nil:
		return pgio.AppendInt32(buf, -1), nil
	case bool:
		buf = pgio.AppendInt32(buf, 1)
		if v {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil
	case int8:
		buf = pgio.AppendInt32(buf, 2)
		return pgio.AppendInt16(buf, int16(v)), nil
	case int16:
		buf = pgio.AppendInt32(buf, 2)
		return pgio.AppendInt16(buf, v), nil
	case uint8:
		buf = pgio.AppendInt32(buf, 2)
		return pgio.AppendInt16(buf, int16(v)), nil
	case uint16:
		// int2 cannot hold the full uint16 range, so widen to int4.
		buf = pgio.AppendInt32(buf, 4)
		return pgio.AppendInt32(buf, int32(v)), nil
	case int32:
		buf = pgio.AppendInt32(buf, 4)
		return pgio.AppendInt32(buf, v), nil
	case int:
		buf = pgio.AppendInt32(buf, 8)
		return pgio.AppendInt64(buf, int64(v)), nil
	case int64:
		buf = pgio.AppendInt32(buf, 8)
		return pgio.AppendInt64(buf, v), nil
	case float32:
		buf = pgio.AppendInt32(buf, 4)
		return pgio.AppendUint32(buf, math.Float32bits(v)), nil
	case float64:
		buf = pgio.AppendInt32(buf, 8)
		return pgio.AppendUint64(buf, math.Float64bits(v)), nil
	case string:
		buf = pgio.AppendInt32(buf, int32(len(v)))
		return append(buf, v...), nil
	case []byte:
		buf = pgio.AppendInt32(buf, int32(len(v)))
		return append(buf, v...), nil
	case time.Time:
		micros := v.UnixNano()/1000 - microsecFromUnixEpochToY2K
		buf = pgio.AppendInt32(buf, 8)
		return pgio.AppendInt64(buf, micros), nil
	case uuid.UUID:
		buf = pgio.AppendInt32(buf, 16)
		return append(buf, v.Bytes()...), nil
	default:
		return nil, fmt.Errorf("cannot encode %T in COPY binary format", v)
	}
}

package registrytypes

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var UUIDType = reflect.TypeOf(uuid.UUID{})

const uuidSubtype = byte(0x04)

func UuidEncodeValue(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != UUIDType {
		return bsoncodec.ValueEncoderError{Name: "UuidEncodeValue", Types: []reflect.Type{UUIDType}, Received: val}
	}
	b := val.Interface().(uuid.UUID)
	return vw.WriteBinaryWithSubtype(b[:], uuidSubtype)
}

func UuidDecodeValue(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != UUIDType {
		return bsoncodec.ValueDecoderError{Name: "UuidDecodeValue", Types: []reflect.Type{UUIDType}, Received: val}
	}

	var data []byte
	var subtype byte
	var err error
	switch vrType := vr.Type(); vrType {
	case bsontype.Binary:
		data, subtype, err = vr.ReadBinary()
		if err != nil {
			return err
		}
		if subtype != uuidSubtype {
			return fmt.Errorf("unsupported binary subtype 0x%02x for UUID", subtype)
		}
	case bsontype.Null:
		if err = vr.ReadNull(); err != nil {
			return err
		}
		val.Set(reflect.ValueOf(uuid.UUID{}))
		return nil
	case bsontype.Undefined:
		if err = vr.ReadUndefined(); err != nil {
			return err
		}
		val.Set(reflect.ValueOf(uuid.UUID{}))
		return nil
	default:
		return fmt.Errorf("cannot decode %v into a UUID", vrType)
	}

	parsed, err := uuid.FromBytes(data)
	if err != nil {
		return err
	}

	val.Set(reflect.ValueOf(parsed))
	return nil
}

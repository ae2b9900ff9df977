package registrytypes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

func testRegistry() *bsoncodec.Registry {
	return bson.NewRegistryBuilder().
		RegisterTypeEncoder(UUIDType, bsoncodec.ValueEncoderFunc(UuidEncodeValue)).
		RegisterTypeDecoder(UUIDType, bsoncodec.ValueDecoderFunc(UuidDecodeValue)).
		Build()
}

type uuidDoc struct {
	Id uuid.UUID `bson:"id"`
}

func TestUuidCodec_RoundTrip(t *testing.T) {
	reg := testRegistry()
	in := uuidDoc{Id: uuid.New()}

	raw, err := bson.MarshalWithRegistry(reg, in)
	assert.NoError(t, err)

	var out uuidDoc
	assert.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &out))
	assert.Equal(t, in.Id, out.Id)
}

func TestUuidCodec_DecodeNull(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"id": nil})
	assert.NoError(t, err)

	var out uuidDoc
	assert.NoError(t, bson.UnmarshalWithRegistry(testRegistry(), raw, &out))
	assert.Equal(t, uuid.UUID{}, out.Id)
}

func TestUuidCodec_DecodeRejectsOtherTypes(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"id": "not-a-binary-uuid"})
	assert.NoError(t, err)

	var out uuidDoc
	assert.Error(t, bson.UnmarshalWithRegistry(testRegistry(), raw, &out))
}

package vectorstore

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQdrantConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     QdrantConfig
		wantErr bool
	}{
		{"valid", QdrantConfig{Host: "localhost", VectorSize: 384}, false},
		{"missing host", QdrantConfig{VectorSize: 384}, true},
		{"missing vector size", QdrantConfig{Host: "localhost"}, true},
		{"bad collection", QdrantConfig{Host: "localhost", VectorSize: 384, Collection: "Bad-Name"}, true},
		{"bad port", QdrantConfig{Host: "localhost", VectorSize: 384, Port: 70000}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 6334, cfg.Port)
				assert.Equal(t, "graphd_documents", cfg.Collection)
			}
		})
	}
}

func TestBuildQdrantFilter(t *testing.T) {
	t.Run("org only", func(t *testing.T) {
		f := buildQdrantFilter(Filter{OrgID: "org1"})
		require.Len(t, f.Must, 1)
		assert.Empty(t, f.MustNot)

		field := f.Must[0].GetField()
		require.NotNil(t, field)
		assert.Equal(t, MetaOrgID, field.GetKey())
		assert.Equal(t, "org1", field.GetMatch().GetKeyword())
	})

	t.Run("exclude archived", func(t *testing.T) {
		f := buildQdrantFilter(Filter{OrgID: "org1", ExcludeArchived: true})
		require.Len(t, f.MustNot, 1)

		field := f.MustNot[0].GetField()
		require.NotNil(t, field)
		assert.Equal(t, MetaArchived, field.GetKey())
		assert.True(t, field.GetMatch().GetBoolean())
	})
}

func TestPointFromRecord(t *testing.T) {
	r := Record{DocID: "doc-1", OrgID: "org1", Title: "T", Text: "body", Archived: true, ContentHash: "abc", Vector: []float32{0.1, 0.2}}
	p := pointFromRecord(r)

	assert.Equal(t, PointID(r), p.GetId().GetUuid())
	assert.Equal(t, PointID(r), PointID(Record{DocID: "doc-1", OrgID: "org1"}), "point ids are stable")
	assert.NotEqual(t, PointID(r), PointID(Record{DocID: "doc-2", OrgID: "org1"}))
	assert.NotEqual(t, PointID(r), PointID(Record{DocID: "doc-1", OrgID: "org2"}), "orgs never share a point")
	assert.Equal(t, "org1", p.Payload[MetaOrgID].GetStringValue())
	assert.True(t, p.Payload[MetaArchived].GetBoolValue())

	hit := hitFromPayload(p.Payload, 0.83)
	assert.Equal(t, Hit{DocID: "doc-1", Title: "T", Text: "body", Score: 0.83}, hit)
}

func TestHitFromPayload_MissingFields(t *testing.T) {
	hit := hitFromPayload(map[string]*qdrant.Value{}, 0.5)
	assert.Equal(t, Hit{Score: 0.5}, hit)
}

func TestNewIndex_UnknownProvider(t *testing.T) {
	_, err := NewIndex(context.Background(), Config{Provider: "pinecone"}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewIndex_Chromem(t *testing.T) {
	idx, err := NewIndex(context.Background(), Config{Provider: "chromem"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ChromemIndex{}, idx)
}
